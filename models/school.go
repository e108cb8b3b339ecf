package models

import (
	"time"
)

// Roster and attendance tables. They are maintained by the admin screens and
// read here by the report export.

type Teacher struct {
	ID        int          `gorm:"primary_key" json:"id"`
	AdminId   string       `gorm:"size:36;index;not null" json:"admin_id"`
	Name      string       `gorm:"size:255;not null" json:"name"`
	Position  string       `gorm:"size:100" json:"position"`
	Phone     string       `gorm:"size:50" json:"phone"`
	Email     string       `gorm:"size:100" json:"email"`
	Address   string       `gorm:"type:text" json:"address"`
	Status    MemberStatus `gorm:"size:20;not null;default:active" json:"status"`
	JoinDate  *time.Time   `json:"join_date"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type Class struct {
	ID        int       `gorm:"primary_key" json:"id"`
	AdminId   string    `gorm:"size:36;index;not null" json:"admin_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Level     string    `gorm:"size:100" json:"level"`
	TeacherId *int      `json:"teacher_id"`
	Schedule  string    `gorm:"size:255" json:"schedule"`
	Capacity  int       `gorm:"not null;default:0" json:"capacity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Student struct {
	ID          int          `gorm:"primary_key" json:"id"`
	AdminId     string       `gorm:"size:36;index;not null" json:"admin_id"`
	ClassId     *int         `gorm:"index" json:"class_id"`
	Nis         string       `gorm:"size:50" json:"nis"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Gender      string       `gorm:"size:20" json:"gender"`
	BirthDate   *time.Time   `json:"birth_date"`
	ParentName  string       `gorm:"size:255" json:"parent_name"`
	ParentPhone string       `gorm:"size:50" json:"parent_phone"`
	Address     string       `gorm:"type:text" json:"address"`
	Status      MemberStatus `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type StudentAttendance struct {
	ID        int              `gorm:"primary_key" json:"id"`
	AdminId   string           `gorm:"size:36;index;not null" json:"admin_id"`
	StudentId int              `gorm:"index;not null" json:"student_id"`
	ClassId   int              `gorm:"index;not null" json:"class_id"`
	Date      time.Time        `gorm:"type:date;not null" json:"date"`
	Status    AttendanceStatus `gorm:"size:20;not null" json:"status"`
	Notes     string           `gorm:"type:text" json:"notes"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

type TeacherAttendance struct {
	ID        int              `gorm:"primary_key" json:"id"`
	AdminId   string           `gorm:"size:36;index;not null" json:"admin_id"`
	TeacherId int              `gorm:"index;not null" json:"teacher_id"`
	Date      time.Time        `gorm:"type:date;not null" json:"date"`
	Status    AttendanceStatus `gorm:"size:20;not null" json:"status"`
	CheckIn   string           `gorm:"size:10" json:"check_in"`
	CheckOut  string           `gorm:"size:10" json:"check_out"`
	Notes     string           `gorm:"type:text" json:"notes"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

type Achievement struct {
	ID          int       `gorm:"primary_key" json:"id"`
	AdminId     string    `gorm:"size:36;index;not null" json:"admin_id"`
	StudentId   int       `gorm:"index;not null" json:"student_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Category    string    `gorm:"size:100" json:"category"`
	Level       string    `gorm:"size:100" json:"level"`
	Date        time.Time `gorm:"type:date;not null" json:"date"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
