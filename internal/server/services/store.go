package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/storerate/storerate/internal/common"
	"github.com/storerate/storerate/internal/dbx"
	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/repomanager"
	"github.com/storerate/storerate/internal/server/repositories/stores"
	"github.com/storerate/storerate/internal/server/validate"
)

// StoreUpdate is a partial update: nil fields keep their prior value.
// OwnerID is immutable and has no field here.
type StoreUpdate struct {
	Name    *string
	Email   *string
	Address *string
}

// StoreService provides store registry operations.
type StoreService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewStoreService constructs a StoreService.
func NewStoreService(db *sql.DB, m repomanager.RepositoryManager) *StoreService {
	return &StoreService{db: db, repomanager: m}
}

// Create validates the fields, checks that ownerID resolves to an existing
// user with the owner role, and persists the store with a zero aggregate.
func (s *StoreService) Create(ctx context.Context, name, email, address, ownerID string) (*models.Store, error) {
	if err := validate.StoreName(name); err != nil {
		return nil, err
	}
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	if err := validate.Address(address); err != nil {
		return nil, err
	}

	owner, err := s.repomanager.Users(s.db).GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorOwnerNotFound
		}
		return nil, fmt.Errorf("error resolving owner: %w", err)
	}
	if owner.Role != models.RoleOwner {
		return nil, common.ErrorOwnerWrongRole
	}

	store := &models.Store{
		ID:      uuid.NewString(),
		Name:    name,
		Email:   email,
		Address: address,
		OwnerID: ownerID,
	}
	if err := s.repomanager.Stores(s.db).Create(ctx, store); err != nil {
		return nil, err
	}
	ownerSummary := owner.Summary()
	store.Owner = &ownerSummary
	return store, nil
}

// Update applies the partial update. Fields left nil retain their prior
// value; provided fields are re-validated.
func (s *StoreService) Update(ctx context.Context, storeID string, update StoreUpdate) (*models.Store, error) {
	repo := s.repomanager.Stores(s.db)
	store, err := repo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if err := validate.StoreName(*update.Name); err != nil {
			return nil, err
		}
		store.Name = *update.Name
	}
	if update.Email != nil {
		if err := validate.Email(*update.Email); err != nil {
			return nil, err
		}
		store.Email = *update.Email
	}
	if update.Address != nil {
		if err := validate.Address(*update.Address); err != nil {
			return nil, err
		}
		store.Address = *update.Address
	}

	if err := repo.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// GetByID returns a single store record.
func (s *StoreService) GetByID(ctx context.Context, storeID string) (*models.Store, error) {
	return s.repomanager.Stores(s.db).GetByID(ctx, storeID)
}

// List returns stores matching the filter, joined with owner summaries.
func (s *StoreService) List(ctx context.Context, filter stores.ListFilter) ([]*models.Store, error) {
	return s.repomanager.Stores(s.db).List(ctx, filter)
}

// Delete removes the store and its ratings in one ordered transaction.
func (s *StoreService) Delete(ctx context.Context, storeID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Ratings(tx).DeleteByStore(ctx, storeID); err != nil {
			return err
		}
		return s.repomanager.Stores(tx).Delete(ctx, storeID)
	})
}
