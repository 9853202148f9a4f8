package stores

import (
	"context"

	"github.com/storerate/storerate/internal/server/models"
)

// ListFilter narrows and orders a store listing. Name and Address match
// case-insensitive substrings.
type ListFilter struct {
	Name    string
	Address string
	SortBy  string
	Order   string
}

type Repository interface {
	Create(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id string) (*models.Store, error)
	// GetByIDForUpdate locks the store row for the rest of the enclosing
	// transaction, serializing concurrent rating submissions per store.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	SetAverageRating(ctx context.Context, id string, average float64) error
	List(ctx context.Context, filter ListFilter) ([]*models.Store, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}
