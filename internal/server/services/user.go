// Package services contains server-side business logic. This file implements
// UserService: registration, login (issuing bearer tokens) and profile
// maintenance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postkeeper/internal/common"
	"github.com/dmitrijs2005/postkeeper/internal/dbx"
	"github.com/dmitrijs2005/postkeeper/internal/server/auth"
	"github.com/dmitrijs2005/postkeeper/internal/server/models"
	"github.com/dmitrijs2005/postkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown, so a failed login
// costs the same whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("postkeeper-dummy-password"), bcrypt.DefaultCost)

// UserService provides account operations:
// - Register: create users with a bcrypt password hash
// - Login: verify credentials and issue a token
// - Profile / UpdateName: read and edit the caller's account
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	cost        int
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		codec:       codec,
		cost:        bcrypt.DefaultCost,
	}
}

// Register creates a new user. Empty fields yield ErrorValidation and a taken
// email yields ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error looking up user: %w", err)
		}

		created, err = repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: string(hash)})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Login verifies email and password and returns a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}

	return s.codec.Encode(user.ID, user.Email)
}

// Profile returns the user with the given id.
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateName changes the display name of the user.
func (s *UserService) UpdateName(ctx context.Context, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	return s.repomanager.Users(s.db).UpdateName(ctx, userID, name)
}
