package utils

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/tpq_backend/config"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateStruct runs the `validate` tags of v and folds failures into one ErrValidation.
func ValidateStruct(v any) error {
	if err := getValidator().Struct(v); err != nil {
		fields := ProcessValidationErrors(err)
		parts := make([]string, 0, len(fields))
		for field, tag := range fields {
			parts = append(parts, field+" ("+tag+")")
		}
		sort.Strings(parts)
		return ValidationError("invalid " + strings.Join(parts, ", "))
	}
	return nil
}

// ValidateVar validates a single value against a tag, e.g. ValidateVar(u, "omitempty,url").
func ValidateVar(value any, tag string) error {
	return getValidator().Var(value, tag)
}

// count records, using WHERE admin_id = ? AND $condition
// adminId can be blank for tables that are not tenant scoped
func ResourceCountWhere[T any](ctx context.Context, adminId string, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if adminId != "" {
		dbCtx = dbCtx.Where("admin_id = ?", adminId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
