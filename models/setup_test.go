package models_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/models"
	"github.com/mmdatafocus/tpq_backend/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupStores points config at a fresh in-memory SQLite DB and a miniredis.
func setupStores(t *testing.T) (*gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	if err := config.SetDB(db); err != nil {
		t.Fatalf("SetDB: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedisDB(client)

	t.Cleanup(func() {
		config.SetRedisDB(nil)
		_ = client.Close()
		_ = config.SetDB(nil)
		_ = sqlDB.Close()
	})
	return db, mr
}

func createTestAdmin(t *testing.T, username string, name string, email string) *models.Admin {
	t.Helper()
	admin, err := models.CreateAdmin(context.Background(), &models.NewAdmin{
		Username: username,
		Name:     name,
		Email:    email,
		Password: "rahasia123",
	})
	if err != nil {
		t.Fatalf("CreateAdmin(%s): %v", username, err)
	}
	return admin
}

func adminContext(admin *models.Admin) context.Context {
	ctx := utils.SetAdminIdInContext(context.Background(), admin.ID)
	return utils.SetAdminNameInContext(ctx, admin.Name)
}

// stringFields snapshots every string column of a settings row.
func stringFields(s *models.TenantSetting) map[string]string {
	out := make(map[string]string)
	v := reflect.ValueOf(*s)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Kind() == reflect.String {
			out[v.Type().Field(i).Name] = v.Field(i).String()
		}
	}
	return out
}

func countSettingsRows(t *testing.T, db *gorm.DB, adminId string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.TenantSetting{}).Where("admin_id = ?", adminId).Count(&n).Error; err != nil {
		t.Fatalf("count settings: %v", err)
	}
	return n
}
