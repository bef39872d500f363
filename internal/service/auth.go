package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/pkg/hash"
)

// Login checks a username/password pair and returns the user it belongs to.
// Any mismatch, including an unknown username, is ErrUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	user.LastSignedIn = s.now()
	updated, err := s.Users.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update last sign in of user %s: %w", user.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": updated.ID,
		"role":    updated.Role,
	}).Info("User logged in")

	return updated, nil
}

func (s *Service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrUnauthorized
	}

	cred, err := s.Credentials.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup credential %q: %w", username, err)
	}
	if cred == nil {
		return nil, ErrUnauthorized
	}

	if err := hash.ComparePassword(cred.PasswordHash, password); err != nil {
		if errors.Is(err, hash.ErrMismatch) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	user, err := s.Users.GetByID(ctx, cred.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", cred.UserID, err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// GetUser returns a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator if its username is not
// taken yet. An existing credential is left as it is.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: admin username and password are required", ErrInvalidInput)
	}

	cred, err := s.Credentials.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup credential %q: %w", username, err)
	}
	if cred != nil {
		user, err := s.Users.GetByID(ctx, cred.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user %s: %w", cred.UserID, err)
		}
		if user == nil {
			return nil, fmt.Errorf("credential %q points to missing user %s", username, cred.UserID)
		}
		return user, nil
	}

	passwordHash, err := hash.HashPasswordWithCost(password, s.passwordCost)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.Create(ctx, &models.User{
		Name:        username,
		Email:       username + "@noches-tranquilas.app",
		LoginMethod: "simple",
		Role:        models.UserRoleAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	if _, err := s.Credentials.Create(ctx, &models.Credential{
		UserID:       user.ID,
		Username:     username,
		PasswordHash: passwordHash,
	}); err != nil {
		return nil, fmt.Errorf("failed to create admin credential: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Created bootstrap admin")
	return user, nil
}

// LinkTelegram binds a Telegram account to the parent owning the given
// credentials, so the bot can act on the parent's behalf.
func (s *Service) LinkTelegram(ctx context.Context, telegramID int64, username, password string) (*models.User, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	linked, err := s.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user by telegram id %d: %w", telegramID, err)
	}
	if linked != nil && linked.ID != user.ID {
		return nil, fmt.Errorf("%w: telegram account already linked to another user", ErrConflict)
	}

	user.TelegramID = &telegramID
	user.LastSignedIn = s.now()
	updated, err := s.Users.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to link telegram account: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     updated.ID,
		"telegram_id": telegramID,
	}).Info("Linked Telegram account")

	return updated, nil
}

// UserByTelegramID returns the user linked to a Telegram account
func (s *Service) UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user by telegram id %d: %w", telegramID, err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
