package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/ports"
)

func dbFromContext(ctx context.Context, base *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx, ok := ports.TxFrom(ctx)
	if !ok {
		return base.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// applyScope narrows a query joined on table to the scope's company and location.
func applyScope(query *gorm.DB, scope compliance.Scope, table string) *gorm.DB {
	if scope.Deny {
		return query.Where("1 = 0")
	}
	if scope.CompanyID != nil {
		query = query.Where(table+".company_id = ?", *scope.CompanyID)
	}
	if scope.LocationID != nil {
		query = query.Where(table+".location_id = ?", *scope.LocationID)
	}
	return query
}

func statusStrings(statuses []compliance.VehicleStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
