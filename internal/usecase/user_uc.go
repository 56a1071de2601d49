// File: internal/usecase/user_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/repository"
	"github.com/Aliiiqbp/OverUnder/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase manages the current-user record behind the login stub.
type UserUseCase interface {
	Login(ctx context.Context, name, email string) (*model.User, error)
	// Current returns the stored user, or domain.ErrNotLoggedIn.
	Current(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context) error
}

type userUC struct {
	store repository.KVStore
	log   *zerolog.Logger
	dev   bool
}

func NewUserUseCase(store repository.KVStore, logger *zerolog.Logger, dev bool) *userUC {
	return &userUC{store: store, log: logger, dev: dev}
}

func (u *userUC) Login(ctx context.Context, name, email string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Login")()

	user, err := model.NewUser(name, email)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	if err := u.store.Set(ctx, repository.KeyCurrentUser, string(b)); err != nil {
		return nil, fmt.Errorf("store current user: %w", err)
	}
	u.log.Info().Str("user_id", user.ID).Str("email", logging.Redact(user.Email, u.dev)).Msg("user logged in")
	return user, nil
}

func (u *userUC) Current(ctx context.Context) (*model.User, error) {
	raw, err := u.store.Get(ctx, repository.KeyCurrentUser)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("read current user: %w", err)
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.IsZero() {
		u.log.Warn().Err(err).Msg("stored user record is unreadable; treating as logged out")
		return nil, domain.ErrNotLoggedIn
	}
	return &user, nil
}

func (u *userUC) Logout(ctx context.Context) error {
	if err := u.store.Remove(ctx, repository.KeyCurrentUser); err != nil {
		return fmt.Errorf("remove current user: %w", err)
	}
	return nil
}
