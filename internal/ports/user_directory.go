package ports

import (
	"context"
	"errors"

	"fleetcheck/internal/domain/compliance"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID         uint
	Email      string
	Name       string
	Role       compliance.Role
	CompanyID  *uint
	LocationID *uint
	Active     bool
}

// UserDirectory resolves back-office users for scoping and digest recipients.
type UserDirectory interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListActiveUsersByRoles(ctx context.Context, roles []compliance.Role) ([]User, error)
}
