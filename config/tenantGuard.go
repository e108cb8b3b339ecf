package config

import (
	"context"
	"strings"

	"github.com/mmdatafocus/tpq_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tenantColumn = "admin_id"

// TenantGuardPlugin enforces multi-tenant isolation by automatically scoping
// queries/updates/deletes to the request's admin_id when the model has an admin_id column.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include admin_id manually.
// - Bypass is explicit via appctx.ContextKeySkipTenantScope.
type TenantGuardPlugin struct{}

func NewTenantGuardPlugin() *TenantGuardPlugin { return &TenantGuardPlugin{} }

func (p *TenantGuardPlugin) Name() string { return "tenant_guard" }

func (p *TenantGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_guard:query", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_guard:row", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_guard:update", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant_guard:delete", tenantGuardCallback); err != nil {
		return err
	}
	return nil
}

func tenantGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassTenantScope(ctx) {
		return
	}
	adminID := adminIdFromContext(ctx)
	if adminID == "" {
		return
	}

	if db.Statement.Schema == nil {
		return
	}
	hasAdminID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, tenantColumn) {
			hasAdminID = true
			break
		}
	}
	if !hasAdminID {
		return
	}

	// Don't duplicate an explicit tenant filter.
	if whereHasAdminID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: tenantColumn},
				Value:  adminID,
			},
		},
	})
}

func adminIdFromContext(ctx context.Context) string {
	if v, ok := appctx.GetString(ctx, appctx.ContextKeyAdminId); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassTenantScope(ctx context.Context) bool {
	if v, ok := appctx.GetBool(ctx, appctx.ContextKeySkipTenantScope); ok && v {
		return true
	}
	return false
}

func whereHasAdminID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasAdminID(e) {
			return true
		}
	}
	return false
}

func exprHasAdminID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsAdminID(v.Column)
	case clause.Neq:
		return colIsAdminID(v.Column)
	case clause.IN:
		return colIsAdminID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasAdminID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasAdminID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), tenantColumn)
	default:
		return false
	}
}

func colIsAdminID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, tenantColumn)
	case clause.Column:
		return strings.EqualFold(c.Name, tenantColumn)
	default:
		return false
	}
}
