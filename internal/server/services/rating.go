package services

import (
	"context"
	"database/sql"

	"github.com/storerate/storerate/internal/dbx"
	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/repomanager"
	"github.com/storerate/storerate/internal/server/validate"
)

// RatingService provides the rating ledger operations.
type RatingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewRatingService constructs a RatingService.
func NewRatingService(db *sql.DB, m repomanager.RepositoryManager) *RatingService {
	return &RatingService{db: db, repomanager: m}
}

// Submit records or overwrites the caller's rating for a store and brings
// the store's aggregate up to date, all in one transaction. The FOR UPDATE
// read of the store row serializes concurrent submissions for the same
// store; submissions for different stores lock different rows and proceed
// independently. A failed submit leaves the prior rating and aggregate
// untouched.
func (s *RatingService) Submit(ctx context.Context, userID, storeID string, value int) (*models.Rating, error) {
	if err := validate.RatingValue(value); err != nil {
		return nil, err
	}

	rating := &models.Rating{UserID: userID, StoreID: storeID, Value: value}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		storeRepo := s.repomanager.Stores(tx)
		if _, err := storeRepo.GetByIDForUpdate(ctx, storeID); err != nil {
			return err
		}

		ratingRepo := s.repomanager.Ratings(tx)
		if err := ratingRepo.Upsert(ctx, rating); err != nil {
			return err
		}

		average, err := ratingRepo.AverageForStore(ctx, storeID)
		if err != nil {
			return err
		}
		return storeRepo.SetAverageRating(ctx, storeID, average)
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// ListForStore returns the store's ratings joined with rater summaries
// plus the current aggregate. Authorization (admin or owning owner) is the
// gateway's job.
func (s *RatingService) ListForStore(ctx context.Context, storeID string) (*models.StoreRatings, error) {
	store, err := s.repomanager.Stores(s.db).GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Ratings(s.db).ListForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Rating{}
	}
	return &models.StoreRatings{Ratings: list, Average: store.AverageRating}, nil
}
