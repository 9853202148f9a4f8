package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/internal/common"
	"github.com/storerate/storerate/internal/logging"
	"github.com/storerate/storerate/internal/server/auth"
	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/stores"
	"github.com/storerate/storerate/internal/server/repositories/users"
	"github.com/storerate/storerate/internal/server/services"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserAPI struct {
	registeredRole models.Role
	registerErr    error
	loginResult    *services.AuthResult
	loginErr       error
	updateErr      error
	deletedID      string
	listResult     []*models.User
	lastFilter     users.ListFilter
}

func (f *fakeUserAPI) Register(_ context.Context, name, email, address, password string, role models.Role) (*models.User, error) {
	f.registeredRole = role
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u-1", Name: name, Email: email, Address: address, Role: role}, nil
}

func (f *fakeUserAPI) Login(context.Context, string, string) (*services.AuthResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeUserAPI) UpdatePassword(context.Context, string, string, string) error {
	return f.updateErr
}

func (f *fakeUserAPI) List(_ context.Context, filter users.ListFilter) ([]*models.User, error) {
	f.lastFilter = filter
	return f.listResult, nil
}

func (f *fakeUserAPI) Delete(_ context.Context, userID string) error {
	f.deletedID = userID
	return nil
}

type fakeStoreAPI struct {
	store     *models.Store
	getErr    error
	createErr error
	deleted   string
}

func (f *fakeStoreAPI) Create(_ context.Context, name, email, address, ownerID string) (*models.Store, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Store{ID: "s-1", Name: name, Email: email, Address: address, OwnerID: ownerID}, nil
}

func (f *fakeStoreAPI) Update(_ context.Context, storeID string, update services.StoreUpdate) (*models.Store, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	store := *f.store
	if update.Name != nil {
		store.Name = *update.Name
	}
	return &store, nil
}

func (f *fakeStoreAPI) GetByID(context.Context, string) (*models.Store, error) {
	return f.store, f.getErr
}

func (f *fakeStoreAPI) List(context.Context, stores.ListFilter) ([]*models.Store, error) {
	if f.store == nil {
		return nil, nil
	}
	return []*models.Store{f.store}, nil
}

func (f *fakeStoreAPI) Delete(_ context.Context, storeID string) error {
	f.deleted = storeID
	return nil
}

type fakeRatingAPI struct {
	submitUserID  string
	submitStoreID string
	submitValue   int
	submitErr     error
	listResult    *models.StoreRatings
	listErr       error
}

func (f *fakeRatingAPI) Submit(_ context.Context, userID, storeID string, value int) (*models.Rating, error) {
	f.submitUserID = userID
	f.submitStoreID = storeID
	f.submitValue = value
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.Rating{UserID: userID, StoreID: storeID, Value: value}, nil
}

func (f *fakeRatingAPI) ListForStore(context.Context, string) (*models.StoreRatings, error) {
	return f.listResult, f.listErr
}

func testServer(us UserAPI, ss StoreAPI, rs RatingAPI) *Server {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return NewServer(":0", logger, us, ss, rs, testSecret)
}

func tokenFor(t *testing.T, userID string, role models.Role) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, role, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return token
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_ForcesUserRole(t *testing.T) {
	users := &fakeUserAPI{}
	srv := testServer(users, &fakeStoreAPI{}, &fakeRatingAPI{})

	body := `{"name":"Alice Wonderland Example Name","email":"alice@example.com","address":"x","password":"Sup3rsecret!","role":"admin"}`
	w := doRequest(srv.Router(), http.MethodPost, "/api/v1/auth/register", "", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", w.Code, w.Body.String())
	}
	if users.registeredRole != models.RoleUser {
		t.Fatalf("public registration must force role user, got %v", users.registeredRole)
	}
}

func TestRegister_ValidationError(t *testing.T) {
	users := &fakeUserAPI{registerErr: common.ValidationError("name must be 20-60 characters")}
	srv := testServer(users, &fakeStoreAPI{}, &fakeRatingAPI{})

	w := doRequest(srv.Router(), http.MethodPost, "/api/v1/auth/register", "", `{"name":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &fakeUserAPI{registerErr: common.ErrorDuplicateEmail}
	srv := testServer(users, &fakeStoreAPI{}, &fakeRatingAPI{})

	w := doRequest(srv.Router(), http.MethodPost, "/api/v1/auth/register", "", `{"email":"dup@example.com"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d", w.Code)
	}
}

func TestCreateUser_AdminPassesRoleThrough(t *testing.T) {
	users := &fakeUserAPI{}
	srv := testServer(users, &fakeStoreAPI{}, &fakeRatingAPI{})
	router := srv.Router()

	body := `{"name":"Oswald Ownerston Example N","email":"o@example.com","address":"x","password":"Sup3rsecret!","role":"owner"}`
	w := doRequest(router, http.MethodPost, "/api/v1/users", tokenFor(t, "admin-1", models.RoleAdmin), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", w.Code, w.Body.String())
	}
	if users.registeredRole != models.RoleOwner {
		t.Fatalf("want role owner passed through, got %v", users.registeredRole)
	}

	// same endpoint is off-limits to ordinary users
	w = doRequest(router, http.MethodPost, "/api/v1/users", tokenFor(t, "u-1", models.RoleUser), body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for non-admin, got %d", w.Code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	users := &fakeUserAPI{loginErr: common.ErrorInvalidCredentials}
	srv := testServer(users, &fakeStoreAPI{}, &fakeRatingAPI{})

	w := doRequest(srv.Router(), http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@example.com","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestLogin_ReturnsTokenAndSummary(t *testing.T) {
	users := &fakeUserAPI{loginResult: &services.AuthResult{
		Token: "signed-token",
		User:  models.UserSummary{ID: "u-1", Name: "Alice", Role: models.RoleUser},
	}}
	srv := testServer(users, &fakeStoreAPI{}, &fakeRatingAPI{})

	w := doRequest(srv.Router(), http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@example.com","password":"Sup3rsecret!"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if resp.Token != "signed-token" || resp.User.ID != "u-1" || resp.User.Role != "user" {
		t.Fatalf("unexpected response: %s", w.Body.String())
	}
}

func TestAuthenticate_BadToken(t *testing.T) {
	srv := testServer(&fakeUserAPI{}, &fakeStoreAPI{}, &fakeRatingAPI{})
	router := srv.Router()

	// garbage token is rejected even on public routes
	w := doRequest(router, http.MethodGet, "/api/v1/stores", "garbage", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for bad token, got %d", w.Code)
	}

	// wrong signing key
	other, err := auth.GenerateToken("u-1", models.RoleUser, []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	w = doRequest(router, http.MethodGet, "/api/v1/stores", other, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for foreign token, got %d", w.Code)
	}
}

func TestStores_PublicBrowsing(t *testing.T) {
	ss := &fakeStoreAPI{store: &models.Store{ID: "s-1", Name: "Corner Books", AverageRating: 4.5}}
	srv := testServer(&fakeUserAPI{}, ss, &fakeRatingAPI{})
	router := srv.Router()

	w := doRequest(router, http.MethodGet, "/api/v1/stores", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 anonymous list, got %d", w.Code)
	}
	w = doRequest(router, http.MethodGet, "/api/v1/stores/s-1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 anonymous get, got %d", w.Code)
	}
}

func TestStores_EmptyListIsArray(t *testing.T) {
	srv := testServer(&fakeUserAPI{}, &fakeStoreAPI{}, &fakeRatingAPI{})

	w := doRequest(srv.Router(), http.MethodGet, "/api/v1/stores", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"stores":[]`) {
		t.Fatalf("want empty array, got %s", w.Body.String())
	}
}

func TestStores_MutationsRequireAdmin(t *testing.T) {
	ss := &fakeStoreAPI{store: &models.Store{ID: "s-1"}}
	srv := testServer(&fakeUserAPI{}, ss, &fakeRatingAPI{})
	router := srv.Router()

	body := `{"name":"Corner Books","email":"shop@example.com","address":"x","owner_id":"owner-1"}`

	w := doRequest(router, http.MethodPost, "/api/v1/stores", "", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: want 401, got %d", w.Code)
	}
	w = doRequest(router, http.MethodPost, "/api/v1/stores", tokenFor(t, "u-1", models.RoleUser), body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("user create: want 401, got %d", w.Code)
	}
	w = doRequest(router, http.MethodPost, "/api/v1/stores", tokenFor(t, "admin-1", models.RoleAdmin), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create: want 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodDelete, "/api/v1/stores/s-1", tokenFor(t, "admin-1", models.RoleAdmin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin delete: want 200, got %d", w.Code)
	}
	if ss.deleted != "s-1" {
		t.Fatalf("delete not forwarded, got %q", ss.deleted)
	}
}

func TestCreateStore_OwnerPreconditionIs422(t *testing.T) {
	ss := &fakeStoreAPI{createErr: common.ErrorOwnerWrongRole}
	srv := testServer(&fakeUserAPI{}, ss, &fakeRatingAPI{})

	body := `{"name":"Corner Books","email":"shop@example.com","address":"x","owner_id":"u-1"}`
	w := doRequest(srv.Router(), http.MethodPost, "/api/v1/stores", tokenFor(t, "admin-1", models.RoleAdmin), body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", w.Code)
	}
}

func TestSubmitRating_UsesCallerIdentity(t *testing.T) {
	rs := &fakeRatingAPI{}
	srv := testServer(&fakeUserAPI{}, &fakeStoreAPI{}, rs)
	router := srv.Router()

	w := doRequest(router, http.MethodPut, "/api/v1/stores/s-1/rating", tokenFor(t, "u-7", models.RoleUser), `{"value":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	if rs.submitUserID != "u-7" || rs.submitStoreID != "s-1" || rs.submitValue != 4 {
		t.Fatalf("submit not forwarded from token: %+v", rs)
	}
}

func TestSubmitRating_RoleGate(t *testing.T) {
	rs := &fakeRatingAPI{}
	srv := testServer(&fakeUserAPI{}, &fakeStoreAPI{}, rs)
	router := srv.Router()

	for _, tt := range []struct {
		name  string
		token string
	}{
		{"anonymous", ""},
		{"admin", tokenFor(t, "admin-1", models.RoleAdmin)},
		{"owner", tokenFor(t, "owner-1", models.RoleOwner)},
	} {
		w := doRequest(router, http.MethodPut, "/api/v1/stores/s-1/rating", tt.token, `{"value":4}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: want 401, got %d", tt.name, w.Code)
		}
	}
	if rs.submitUserID != "" {
		t.Fatalf("service reached despite denial")
	}
}

func TestStoreRatings_OwnershipCheck(t *testing.T) {
	ss := &fakeStoreAPI{store: &models.Store{ID: "s-1", OwnerID: "owner-1", AverageRating: 4.5}}
	rs := &fakeRatingAPI{listResult: &models.StoreRatings{Ratings: []*models.Rating{}, Average: 4.5}}
	srv := testServer(&fakeUserAPI{}, ss, rs)
	router := srv.Router()

	w := doRequest(router, http.MethodGet, "/api/v1/stores/s-1/ratings", tokenFor(t, "owner-1", models.RoleOwner), "")
	if w.Code != http.StatusOK {
		t.Fatalf("owning owner: want 200, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/stores/s-1/ratings", tokenFor(t, "owner-2", models.RoleOwner), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("other owner: want 401, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/stores/s-1/ratings", tokenFor(t, "admin-1", models.RoleAdmin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin: want 200, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/stores/s-1/ratings", tokenFor(t, "u-1", models.RoleUser), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("user: want 401, got %d", w.Code)
	}
}

func TestStoreRatings_UnknownStore(t *testing.T) {
	ss := &fakeStoreAPI{getErr: common.ErrorNotFound}
	srv := testServer(&fakeUserAPI{}, ss, &fakeRatingAPI{})
	router := srv.Router()

	// an owner probing an unknown id gets the same denial as a forbidden one
	w := doRequest(router, http.MethodGet, "/api/v1/stores/ghost/ratings", tokenFor(t, "owner-1", models.RoleOwner), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("owner on unknown store: want 401, got %d", w.Code)
	}

	// an admin may learn the store does not exist
	w = doRequest(router, http.MethodGet, "/api/v1/stores/ghost/ratings", tokenFor(t, "admin-1", models.RoleAdmin), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("admin on unknown store: want 404, got %d", w.Code)
	}
}

func TestUpdatePassword_RequiresAuth(t *testing.T) {
	srv := testServer(&fakeUserAPI{}, &fakeStoreAPI{}, &fakeRatingAPI{})
	router := srv.Router()

	body := `{"old_password":"Sup3rsecret!","new_password":"N3wsecret!!"}`
	w := doRequest(router, http.MethodPost, "/api/v1/auth/password", "", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: want 401, got %d", w.Code)
	}

	w = doRequest(router, http.MethodPost, "/api/v1/auth/password", tokenFor(t, "u-1", models.RoleUser), body)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated: want 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListUsers_AdminOnlyWithFilters(t *testing.T) {
	us := &fakeUserAPI{}
	srv := testServer(us, &fakeStoreAPI{}, &fakeRatingAPI{})
	router := srv.Router()

	w := doRequest(router, http.MethodGet, "/api/v1/users?role=owner&sort_by=name&order=asc", tokenFor(t, "u-1", models.RoleUser), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("user: want 401, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/users?role=owner&sort_by=name&order=asc", tokenFor(t, "admin-1", models.RoleAdmin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin: want 200, got %d", w.Code)
	}
	if us.lastFilter.Role != models.RoleOwner || us.lastFilter.SortBy != "name" || us.lastFilter.Order != "asc" {
		t.Fatalf("filter not forwarded: %+v", us.lastFilter)
	}
}

func TestDeleteUser_AdminOnly(t *testing.T) {
	us := &fakeUserAPI{}
	srv := testServer(us, &fakeStoreAPI{}, &fakeRatingAPI{})
	router := srv.Router()

	w := doRequest(router, http.MethodDelete, "/api/v1/users/u-9", tokenFor(t, "owner-1", models.RoleOwner), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("owner: want 401, got %d", w.Code)
	}

	w = doRequest(router, http.MethodDelete, "/api/v1/users/u-9", tokenFor(t, "admin-1", models.RoleAdmin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin: want 200, got %d", w.Code)
	}
	if us.deletedID != "u-9" {
		t.Fatalf("delete not forwarded, got %q", us.deletedID)
	}
}
