package models

import (
	"log"

	"github.com/mmdatafocus/tpq_backend/config"
)

// AllModels lists every table, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&Admin{}, &TenantSetting{},
		&Teacher{}, &Class{}, &Student{},
		&StudentAttendance{}, &TeacherAttendance{}, &Achievement{},
		&FinancialTransaction{},
		&Registration{},
	}
}

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(AllModels()...)
	if err != nil {
		log.Fatal(err)
	}
}
