package ratings

import (
	"context"

	"github.com/storerate/storerate/internal/server/models"
)

type Repository interface {
	// Upsert inserts the rating or overwrites the value of the existing
	// (user, store) row.
	Upsert(ctx context.Context, rating *models.Rating) error
	// AverageForStore computes the arithmetic mean of the store's rating
	// values, 0 if the store has none.
	AverageForStore(ctx context.Context, storeID string) (float64, error)
	// ListForStore returns the store's ratings joined with rater
	// summaries, newest first.
	ListForStore(ctx context.Context, storeID string) ([]*models.Rating, error)
	DeleteByStore(ctx context.Context, storeID string) error
	DeleteByUser(ctx context.Context, userID string) error
	// DeleteByOwner removes ratings belonging to every store owned by
	// the given user, ahead of deleting those stores.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
