package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/utils"
	"gorm.io/gorm"
)

// Admin is a tenant account. Every tenant-scoped row carries its ID as admin_id.
type Admin struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:100" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"password"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAdmin struct {
	Username string `json:"username" validate:"required,max=100"`
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type LoginInfo struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	AdminId   string    `json:"admin_id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
}

/*
caches:
	Admin:$id
	Token:revoked:$token
*/

func revokedTokenKey(token string) string {
	return "Token:revoked:" + token
}

func (admin *Admin) PrepareGive() {
	admin.Password = ""
}

func (admin Admin) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Admin](admin.ID)
}

func CreateAdmin(ctx context.Context, input *NewAdmin) (*Admin, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Admin](ctx, "", "username = ?", input.Username)
	if err != nil {
		return nil, utils.StorageError("count admins", err)
	}
	if count > 0 {
		return nil, utils.ValidationError("username is already taken")
	}

	admin := Admin{
		ID:       uuid.NewString(),
		Username: html.EscapeString(strings.TrimSpace(input.Username)),
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Password: hashed,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return nil, utils.StorageError("create admin", err)
	}
	return &admin, nil
}

// GetAdmin loads an admin through the Admin:$id cache.
func GetAdmin(ctx context.Context, id string) (*Admin, error) {
	if id == "" {
		return nil, utils.ValidationError("admin id is required")
	}
	cached, err := utils.RetrieveRedis[Admin](id)
	if err != nil {
		config.LogWarning(config.GetLogger(), "models", "GetAdmin", "read cache", err)
	}
	if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var admin Admin
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("admin not found")
		}
		return nil, utils.StorageError("get admin", err)
	}
	if err := utils.StoreRedis(&admin, admin.ID, config.SettingsCacheTTL()); err != nil {
		config.LogWarning(config.GetLogger(), "models", "GetAdmin", "write cache", err)
	}
	return &admin, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	db := config.GetDB()

	var admin Admin
	err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ValidationError("invalid username or password")
		}
		return nil, utils.StorageError("login", err)
	}

	if err := utils.ComparePassword(admin.Password, password); err != nil {
		return nil, utils.ValidationError("invalid username or password")
	}
	if !utils.DereferencePtr(admin.IsActive, false) {
		return nil, utils.ValidationError("account is disabled")
	}

	token, expiresAt, err := utils.JwtGenerate(admin.ID, admin.Name, admin.Username)
	if err != nil {
		return nil, err
	}
	return &LoginInfo{
		Token:     token,
		ExpiresAt: expiresAt,
		AdminId:   admin.ID,
		Name:      admin.Name,
		Username:  admin.Username,
		Email:     admin.Email,
	}, nil
}

// Logout revokes the request's token until it would have expired anyway.
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, utils.ErrUnauthorized
	}
	claims, err := utils.ParseClaims(token)
	if err != nil {
		return false, err
	}
	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		return true, nil
	}
	if err := config.SetRedisValue(revokedTokenKey(token), claims.AdminId, ttl); err != nil {
		return false, utils.StorageError("revoke token", err)
	}
	return true, nil
}

func IsTokenRevoked(token string) (bool, error) {
	_, exists, err := config.GetRedisValue(revokedTokenKey(token))
	if err != nil {
		return false, err
	}
	return exists, nil
}

// renameAdmin keeps the account display name in line with the site name.
func renameAdmin(ctx context.Context, adminId string, name string) error {
	admin, err := GetAdmin(ctx, adminId)
	if err != nil {
		return err
	}
	if admin.Name == name {
		return nil
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&Admin{}).Where("id = ?", adminId).Update("name", name).Error; err != nil {
		return err
	}
	return admin.RemoveInstanceRedis()
}
