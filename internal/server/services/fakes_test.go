package services

import (
	"context"
	"database/sql"

	"github.com/storerate/storerate/internal/common"
	"github.com/storerate/storerate/internal/dbx"
	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/ratings"
	"github.com/storerate/storerate/internal/server/repositories/stores"
	"github.com/storerate/storerate/internal/server/repositories/users"
)

// fakeRepoManager vends in-memory repositories and records the order of
// mutating calls so cascade tests can assert it.
type fakeRepoManager struct {
	users   *fakeUserRepo
	stores  *fakeStoreRepo
	ratings *fakeRatingRepo
	calls   []string
}

func newFakeRepoManager() *fakeRepoManager {
	m := &fakeRepoManager{
		users:   &fakeUserRepo{users: map[string]*models.User{}},
		stores:  &fakeStoreRepo{stores: map[string]*models.Store{}},
		ratings: &fakeRatingRepo{values: map[string]map[string]int{}},
	}
	m.users.log = &m.calls
	m.stores.log = &m.calls
	m.ratings.log = &m.calls
	return m
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Stores(dbx.DBTX) stores.Repository            { return m.stores }
func (m *fakeRepoManager) Ratings(dbx.DBTX) ratings.Repository          { return m.ratings }

type fakeUserRepo struct {
	users     map[string]*models.User
	createErr error
	log       *[]string
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return common.ErrorDuplicateEmail
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ users.ListFilter) ([]*models.User, error) {
	var result []*models.User
	for _, user := range r.users {
		result = append(result, user)
	}
	return result, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	*r.log = append(*r.log, "users.Delete")
	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeStoreRepo struct {
	stores       map[string]*models.Store
	lockErr      error
	setAvgErr    error
	lastAverage  float64
	averagesSet  int
	log          *[]string
}

func (r *fakeStoreRepo) Create(_ context.Context, store *models.Store) error {
	r.stores[store.ID] = store
	return nil
}

func (r *fakeStoreRepo) GetByID(_ context.Context, id string) (*models.Store, error) {
	store, ok := r.stores[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return store, nil
}

func (r *fakeStoreRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.Store, error) {
	*r.log = append(*r.log, "stores.GetByIDForUpdate")
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	return r.GetByID(ctx, id)
}

func (r *fakeStoreRepo) Update(_ context.Context, store *models.Store) error {
	if _, ok := r.stores[store.ID]; !ok {
		return common.ErrorNotFound
	}
	r.stores[store.ID] = store
	return nil
}

func (r *fakeStoreRepo) SetAverageRating(_ context.Context, id string, average float64) error {
	*r.log = append(*r.log, "stores.SetAverageRating")
	if r.setAvgErr != nil {
		return r.setAvgErr
	}
	store, ok := r.stores[id]
	if !ok {
		return common.ErrorNotFound
	}
	store.AverageRating = average
	r.lastAverage = average
	r.averagesSet++
	return nil
}

func (r *fakeStoreRepo) List(_ context.Context, _ stores.ListFilter) ([]*models.Store, error) {
	var result []*models.Store
	for _, store := range r.stores {
		result = append(result, store)
	}
	return result, nil
}

func (r *fakeStoreRepo) Delete(_ context.Context, id string) error {
	*r.log = append(*r.log, "stores.Delete")
	if _, ok := r.stores[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.stores, id)
	return nil
}

func (r *fakeStoreRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	*r.log = append(*r.log, "stores.DeleteByOwner")
	for id, store := range r.stores {
		if store.OwnerID == ownerID {
			delete(r.stores, id)
		}
	}
	return nil
}

type fakeRatingRepo struct {
	// values[storeID][userID] = value
	values    map[string]map[string]int
	upsertErr error
	log       *[]string
}

func (r *fakeRatingRepo) Upsert(_ context.Context, rating *models.Rating) error {
	*r.log = append(*r.log, "ratings.Upsert")
	if r.upsertErr != nil {
		return r.upsertErr
	}
	byUser, ok := r.values[rating.StoreID]
	if !ok {
		byUser = map[string]int{}
		r.values[rating.StoreID] = byUser
	}
	byUser[rating.UserID] = rating.Value
	return nil
}

func (r *fakeRatingRepo) AverageForStore(_ context.Context, storeID string) (float64, error) {
	*r.log = append(*r.log, "ratings.AverageForStore")
	byUser := r.values[storeID]
	if len(byUser) == 0 {
		return 0, nil
	}
	sum := 0
	for _, value := range byUser {
		sum += value
	}
	return float64(sum) / float64(len(byUser)), nil
}

func (r *fakeRatingRepo) ListForStore(_ context.Context, storeID string) ([]*models.Rating, error) {
	var result []*models.Rating
	for userID, value := range r.values[storeID] {
		result = append(result, &models.Rating{UserID: userID, StoreID: storeID, Value: value})
	}
	return result, nil
}

func (r *fakeRatingRepo) DeleteByStore(_ context.Context, storeID string) error {
	*r.log = append(*r.log, "ratings.DeleteByStore")
	delete(r.values, storeID)
	return nil
}

func (r *fakeRatingRepo) DeleteByUser(_ context.Context, userID string) error {
	*r.log = append(*r.log, "ratings.DeleteByUser")
	for _, byUser := range r.values {
		delete(byUser, userID)
	}
	return nil
}

func (r *fakeRatingRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	*r.log = append(*r.log, "ratings.DeleteByOwner")
	return nil
}
