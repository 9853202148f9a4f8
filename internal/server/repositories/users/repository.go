package users

import (
	"context"

	"github.com/storerate/storerate/internal/server/models"
)

// ListFilter narrows and orders a user listing. Name, Email, and Address
// match case-insensitive substrings, Role matches exactly. SortBy is
// checked against a column whitelist; unknown values fall back to the
// default ordering (created_at DESC).
type ListFilter struct {
	Name    string
	Email   string
	Address string
	Role    models.Role
	SortBy  string
	Order   string
}

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	List(ctx context.Context, filter ListFilter) ([]*models.User, error)
	Delete(ctx context.Context, id string) error
}
