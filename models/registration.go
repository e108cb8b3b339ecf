package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/utils"
)

// Registration is an enrollment request submitted from the public site.
type Registration struct {
	ID             int                `gorm:"primary_key" json:"id"`
	AdminId        string             `gorm:"size:36;index;not null" json:"admin_id"`
	StudentName    string             `gorm:"size:255;not null" json:"student_name"`
	Gender         string             `gorm:"size:20" json:"gender"`
	BirthPlace     string             `gorm:"size:100" json:"birth_place"`
	BirthDate      *time.Time         `json:"birth_date"`
	ParentName     string             `gorm:"size:255;not null" json:"parent_name"`
	ParentPhone    string             `gorm:"size:50;not null" json:"parent_phone"`
	ParentEmail    string             `gorm:"size:100" json:"parent_email"`
	Address        string             `gorm:"type:text" json:"address"`
	PreferredClass string             `gorm:"size:100" json:"preferred_class"`
	Notes          string             `gorm:"type:text" json:"notes"`
	Status         RegistrationStatus `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRegistration struct {
	StudentName    string     `json:"student_name" validate:"required,max=255"`
	Gender         string     `json:"gender" validate:"omitempty,oneof=L P"`
	BirthPlace     string     `json:"birth_place" validate:"max=100"`
	BirthDate      *time.Time `json:"birth_date"`
	ParentName     string     `json:"parent_name" validate:"required,max=255"`
	ParentPhone    string     `json:"parent_phone" validate:"required"`
	ParentEmail    string     `json:"parent_email" validate:"omitempty,email"`
	Address        string     `json:"address"`
	PreferredClass string     `json:"preferred_class" validate:"max=100"`
	Notes          string     `json:"notes"`
}

// CreateRegistration stores a public enrollment for adminId. The tenant comes
// from the URL, so it is checked against the admin table first.
func CreateRegistration(ctx context.Context, adminId string, input *NewRegistration) (*Registration, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidatePhoneNumber(input.ParentPhone, config.PhoneRegion()); err != nil {
		return nil, utils.ValidationError("invalid parent_phone")
	}
	if _, err := GetAdmin(ctx, adminId); err != nil {
		return nil, err
	}

	registration := Registration{
		AdminId:        adminId,
		StudentName:    strings.TrimSpace(input.StudentName),
		Gender:         input.Gender,
		BirthPlace:     input.BirthPlace,
		BirthDate:      input.BirthDate,
		ParentName:     strings.TrimSpace(input.ParentName),
		ParentPhone:    strings.TrimSpace(input.ParentPhone),
		ParentEmail:    input.ParentEmail,
		Address:        input.Address,
		PreferredClass: input.PreferredClass,
		Notes:          input.Notes,
		Status:         RegistrationStatusPending,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&registration).Error; err != nil {
		return nil, utils.StorageError("create registration", err)
	}
	return &registration, nil
}

// ListRegistrations returns the caller's enrollments, newest first.
func ListRegistrations(ctx context.Context, status RegistrationStatus) ([]*Registration, error) {
	adminId, ok := utils.GetAdminIdFromContext(ctx)
	if !ok || adminId == "" {
		return nil, utils.ErrUnauthorized
	}
	if status != "" && !status.IsValid() {
		return nil, utils.ValidationError("invalid status")
	}

	var results []*Registration
	var err error
	if status == "" {
		results, err = utils.FetchAllModels[Registration](ctx, adminId, "created_at DESC, id DESC")
	} else {
		results, err = utils.FetchAllModels[Registration](ctx, adminId, "created_at DESC, id DESC", "status = ?", status)
	}
	if err != nil {
		return nil, utils.StorageError("list registrations", err)
	}
	return results, nil
}
