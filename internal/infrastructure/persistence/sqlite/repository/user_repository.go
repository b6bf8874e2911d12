package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"fleetcheck/internal/domain/compliance"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/infrastructure/persistence/sqlite/model"
	"fleetcheck/internal/ports"
)

type UserRepository struct {
	db *gorm.DB
}

var _ ports.UserDirectory = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user ports.User) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}

	row := model.User{
		Email:      strings.TrimSpace(user.Email),
		Name:       strings.TrimSpace(user.Name),
		Role:       string(user.Role),
		CompanyID:  user.CompanyID,
		LocationID: user.LocationID,
		Active:     user.Active,
		CreatedAt:  nowUTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.User{}, errs.Wrap(err, "insert user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}

	var row model.User
	if err := db.Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user by email")
	}
	return mapUser(row), nil
}

func (r *UserRepository) ListActiveUsersByRoles(ctx context.Context, roles []compliance.Role) ([]ports.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	var rows []model.User
	if err := db.
		Where("active = ?", true).
		Where("role IN ?", names).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query active users by role")
	}

	items := make([]ports.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapUser(row))
	}
	return items, nil
}

func mapUser(row model.User) ports.User {
	return ports.User{
		ID:         row.ID,
		Email:      row.Email,
		Name:       row.Name,
		Role:       compliance.Role(row.Role),
		CompanyID:  row.CompanyID,
		LocationID: row.LocationID,
		Active:     row.Active,
	}
}
