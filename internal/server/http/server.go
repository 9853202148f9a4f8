// Package http is the access gateway: a thin gin layer that authenticates
// callers, runs the authorization guard, and maps service results and
// errors onto JSON responses and status codes.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/internal/logging"
	"github.com/storerate/storerate/internal/server/authz"
	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/stores"
	"github.com/storerate/storerate/internal/server/repositories/users"
	"github.com/storerate/storerate/internal/server/services"
)

// UserAPI is the slice of UserService the gateway consumes.
type UserAPI interface {
	Register(ctx context.Context, name, email, address, password string, role models.Role) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	List(ctx context.Context, filter users.ListFilter) ([]*models.User, error)
	Delete(ctx context.Context, userID string) error
}

// StoreAPI is the slice of StoreService the gateway consumes.
type StoreAPI interface {
	Create(ctx context.Context, name, email, address, ownerID string) (*models.Store, error)
	Update(ctx context.Context, storeID string, update services.StoreUpdate) (*models.Store, error)
	GetByID(ctx context.Context, storeID string) (*models.Store, error)
	List(ctx context.Context, filter stores.ListFilter) ([]*models.Store, error)
	Delete(ctx context.Context, storeID string) error
}

// RatingAPI is the slice of RatingService the gateway consumes.
type RatingAPI interface {
	Submit(ctx context.Context, userID, storeID string, value int) (*models.Rating, error)
	ListForStore(ctx context.Context, storeID string) (*models.StoreRatings, error)
}

// Server serves the public HTTP API.
type Server struct {
	address   string
	logger    logging.Logger
	users     UserAPI
	stores    StoreAPI
	ratings   RatingAPI
	jwtSecret []byte
}

// NewServer constructs the gateway over the given services.
func NewServer(address string, l logging.Logger, us UserAPI, ss StoreAPI, rs RatingAPI, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		stores:    ss,
		ratings:   rs,
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the gin engine with all routes registered. Exposed
// separately from Run so tests can drive it with httptest.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.authenticate())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/register", s.handleRegister)
		v1.POST("/auth/login", s.handleLogin)
		v1.POST("/auth/password", s.requirePermission(authz.ActionUpdateOwnPassword), s.handleUpdatePassword)

		// store browsing is open to anonymous callers
		v1.GET("/stores", s.handleListStores)
		v1.GET("/stores/:id", s.handleGetStore)
		v1.POST("/stores", s.requirePermission(authz.ActionManageStores), s.handleCreateStore)
		v1.PATCH("/stores/:id", s.requirePermission(authz.ActionManageStores), s.handleUpdateStore)
		v1.DELETE("/stores/:id", s.requirePermission(authz.ActionManageStores), s.handleDeleteStore)

		v1.PUT("/stores/:id/rating", s.requirePermission(authz.ActionSubmitRating), s.handleSubmitRating)
		v1.GET("/stores/:id/ratings", s.requirePermission(authz.ActionViewStoreRatings), s.handleStoreRatings)

		v1.GET("/users", s.requirePermission(authz.ActionManageUsers), s.handleListUsers)
		v1.POST("/users", s.requirePermission(authz.ActionManageUsers), s.handleCreateUser)
		v1.DELETE("/users/:id", s.requirePermission(authz.ActionManageUsers), s.handleDeleteUser)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
