// Package services contains the server-side business logic. This file
// implements UserService: registration, authentication, password changes,
// and admin user management with the ordered cascade on delete.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/storerate/storerate/internal/common"
	"github.com/storerate/storerate/internal/dbx"
	"github.com/storerate/storerate/internal/server/auth"
	"github.com/storerate/storerate/internal/server/config"
	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/repomanager"
	"github.com/storerate/storerate/internal/server/repositories/users"
	"github.com/storerate/storerate/internal/server/validate"
)

// AuthResult is what a successful login returns: the signed credential and
// a public summary of the account it identifies.
type AuthResult struct {
	Token string
	User  models.UserSummary
}

// UserService provides account-related operations.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
	}
}

// Register validates the fields, hashes the password, and creates the
// account. Elevated roles never come through here from the public
// endpoint; the gateway forces role to user there and only the admin
// user-creation path passes other roles.
func (s *UserService) Register(ctx context.Context, name, email, address, password string, role models.Role) (*models.User, error) {
	if err := validate.UserName(name); err != nil {
		return nil, err
	}
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	if err := validate.Address(address); err != nil {
		return nil, err
	}
	if err := validate.Password(password); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	} else if _, err := models.ParseRole(string(role)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Address:      address,
		PasswordHash: string(hash),
		Role:         role,
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			return nil, common.ErrorDuplicateEmail
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login verifies the credentials and mints a signed token. The error is
// the same whether the email is unknown or the password is wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrorInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &AuthResult{Token: token, User: user.Summary()}, nil
}

// UpdatePassword requires the old password to verify and the new one to
// satisfy the registration strength rule.
func (s *UserService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := validate.Password(newPassword); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInvalidCredentials
		}
		return common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return common.ErrorInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return repo.UpdatePassword(ctx, userID, string(hash))
}

// GetByID returns a single account record.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// List returns accounts matching the filter.
func (s *UserService) List(ctx context.Context, filter users.ListFilter) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx, filter)
}

// Delete removes the user and everything hanging off it inside one
// transaction, ordered so the foreign keys hold at every step: the user's
// own ratings, then ratings of stores they own, then those stores, then
// the user row.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ratingRepo := s.repomanager.Ratings(tx)
		if err := ratingRepo.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := ratingRepo.DeleteByOwner(ctx, userID); err != nil {
			return err
		}
		if err := s.repomanager.Stores(tx).DeleteByOwner(ctx, userID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, userID)
	})
}
