package utils

import (
	"context"
	"errors"

	"github.com/mmdatafocus/tpq_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// fetch model from db
// (adminId is used in query's WHERE, may return RecordNotFound)
func FetchModel[T any](ctx context.Context, adminId string, id int) (*T, error) {
	db := config.GetDB()
	var result T
	err := db.WithContext(ctx).Where("admin_id = ?", adminId).First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models of a tenant, ordered by orderBy (may be empty)
func FetchAllModels[T any](ctx context.Context, adminId string, orderBy string, conds ...interface{}) ([]*T, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("admin_id = ?", adminId)
	if len(conds) > 0 {
		dbCtx = dbCtx.Where(conds[0], conds[1:]...)
	}
	if orderBy != "" {
		dbCtx = dbCtx.Order(orderBy)
	}
	var results []*T
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
