// seed-admin creates a tenant admin account, or resets the password of an
// existing one, and makes sure the tenant has a settings row.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-admin -username tpqadmin -name "TPQ Al-Ikhlas" -email admin@example.com -password 'secret123'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/models"
	"github.com/mmdatafocus/tpq_backend/utils"
	"gorm.io/gorm"
)

func main() {
	username := flag.String("username", "", "admin username (required)")
	name := flag.String("name", "", "tenant display name, used as the default site name")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password, at least 8 characters (required)")
	migrate := flag.Bool("migrate", false, "run AutoMigrate before seeding")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *name == "" {
		*name = models.DefaultSiteName
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if *migrate {
		models.MigrateTable()
	}
	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)

	var existing models.Admin
	err := db.WithContext(ctx).Where("username = ?", *username).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin, err := models.CreateAdmin(ctx, &models.NewAdmin{
			Username: *username,
			Name:     *name,
			Email:    *email,
			Password: *password,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin: %v\n", err)
			os.Exit(1)
		}
		existing = *admin
		fmt.Printf("Created admin: username=%q id=%s\n", admin.Username, admin.ID)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to lookup admin: %v\n", err)
		os.Exit(1)
	default:
		hashed, err := utils.HashPassword(*password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
			os.Exit(1)
		}
		if err := db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", existing.ID).Updates(map[string]any{
			"password":  hashed,
			"is_active": true,
		}).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update admin: %v\n", err)
			os.Exit(1)
		}
		_ = existing.RemoveInstanceRedis()
		fmt.Printf("Reset password of admin: username=%q id=%s\n", existing.Username, existing.ID)
	}

	setting, err := models.GetSettings(ctx, existing.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize settings: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Settings ready: site_name=%q\n", setting.SiteName)
}
