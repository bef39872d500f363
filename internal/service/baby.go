package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/metrics"
	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/routine"
	"github.com/Kerhoff/NochesTranquilas/pkg/hash"
)

// CurrentBaby returns the baby linked to the parent user, suspending it
// first if its trial period is over.
func (s *Service) CurrentBaby(ctx context.Context, userID string) (*models.Baby, error) {
	baby, err := s.Babies.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup baby (user_id=%s): %w", userID, err)
	}
	if baby == nil {
		return nil, ErrNotFound
	}
	if err := s.applyTrialExpiration(ctx, baby); err != nil {
		return nil, err
	}
	return baby, nil
}

// GetBaby returns a baby by ID for the administrator
func (s *Service) GetBaby(ctx context.Context, babyID string) (*models.Baby, error) {
	baby, err := s.Babies.GetByID(ctx, babyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get baby %s: %w", babyID, err)
	}
	if baby == nil {
		return nil, ErrNotFound
	}
	if err := s.applyTrialExpiration(ctx, baby); err != nil {
		return nil, err
	}
	return baby, nil
}

// ListBabies returns every baby, newest first
func (s *Service) ListBabies(ctx context.Context) ([]*models.Baby, error) {
	babies, err := s.Babies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list babies: %w", err)
	}
	for _, baby := range babies {
		if err := s.applyTrialExpiration(ctx, baby); err != nil {
			return nil, err
		}
	}
	return babies, nil
}

// applyTrialExpiration is the lazy trial check: it runs on every read of a
// baby and persists the suspension it decides on.
func (s *Service) applyTrialExpiration(ctx context.Context, baby *models.Baby) error {
	if !routine.TrialExpired(baby, s.now()) {
		return nil
	}

	if err := s.Babies.UpdateStatus(ctx, baby.ID, models.AccountStatusSuspended, false); err != nil {
		return fmt.Errorf("failed to suspend baby %s: %w", baby.ID, err)
	}
	baby.AccountStatus = models.AccountStatusSuspended
	s.metrics.AccountSuspended(metrics.ReasonTrialExpired)

	s.logger.WithFields(logrus.Fields{
		"baby_id":        baby.ID,
		"first_event_at": baby.FirstEventAt,
	}).Info("Trial expired, account suspended")
	return nil
}

// CreateBabyInput is the admin form that opens a new parent account
type CreateBabyInput struct {
	ParentUsername   string
	ParentPassword   string
	Name             string
	BirthDate        *time.Time
	AgeMonths        *int
	WeightGrams      *int
	HeightCm         *int
	InitialRoutine   string
	RoutineStartTime string
}

// CreateBabyResult is returned by CreateBaby
type CreateBabyResult struct {
	Baby           *models.Baby `json:"baby"`
	Parent         *models.User `json:"parent"`
	ParentUsername string       `json:"parent_username"`
}

// CreateBaby creates the parent user, its login credential and the baby,
// and leaves an account_created notification in the admin inbox.
func (s *Service) CreateBaby(ctx context.Context, in CreateBabyInput) (*CreateBabyResult, error) {
	username := strings.TrimSpace(in.ParentUsername)
	name := strings.TrimSpace(in.Name)
	if username == "" || in.ParentPassword == "" || name == "" {
		return nil, fmt.Errorf("%w: parent username, password and baby name are required", ErrInvalidInput)
	}

	existing, err := s.Credentials.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup credential %q: %w", username, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q", ErrConflict, username)
	}

	passwordHash, err := hash.HashPasswordWithCost(in.ParentPassword, s.passwordCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	parent, err := s.Users.Create(ctx, &models.User{
		Name:         username,
		Email:        username + "@noches-tranquilas.app",
		LoginMethod:  "simple",
		Role:         models.UserRoleUser,
		LastSignedIn: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create parent user: %w", err)
	}

	if _, err := s.Credentials.Create(ctx, &models.Credential{
		UserID:       parent.ID,
		Username:     username,
		PasswordHash: passwordHash,
	}); err != nil {
		return nil, fmt.Errorf("failed to create parent credential: %w", err)
	}

	baby, err := s.Babies.Create(ctx, &models.Baby{
		UserID:           parent.ID,
		Name:             name,
		BirthDate:        in.BirthDate,
		AgeMonths:        in.AgeMonths,
		WeightGrams:      in.WeightGrams,
		HeightCm:         in.HeightCm,
		InitialRoutine:   strings.TrimSpace(in.InitialRoutine),
		RoutineStartTime: strings.TrimSpace(in.RoutineStartTime),
		AccountStatus:    models.AccountStatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create baby: %w", err)
	}

	if _, err := s.Notifications.Create(ctx, &models.AdminNotification{
		BabyID:   baby.ID,
		BabyName: baby.Name,
		Type:     models.NotificationAccountCreated,
		Message:  fmt.Sprintf("Nueva cuenta creada para %s", baby.Name),
	}); err != nil {
		return nil, fmt.Errorf("failed to create admin notification: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"baby_id": baby.ID,
		"user_id": parent.ID,
	}).Info("Created baby account")

	return &CreateBabyResult{Baby: baby, Parent: parent, ParentUsername: username}, nil
}

// ToggleSuspension flips the account status. A reactivation after the trial
// ran out is marked as an override so the trial rule does not undo it.
func (s *Service) ToggleSuspension(ctx context.Context, babyID string) (models.AccountStatus, error) {
	baby, err := s.GetBaby(ctx, babyID)
	if err != nil {
		return "", err
	}

	status := baby.AccountStatus.Toggle()
	override := routine.AdminOverride(baby, status, s.now())
	if err := s.Babies.UpdateStatus(ctx, baby.ID, status, override); err != nil {
		return "", fmt.Errorf("failed to toggle suspension of baby %s: %w", babyID, err)
	}
	if status == models.AccountStatusSuspended {
		s.metrics.AccountSuspended(metrics.ReasonAdmin)
	}

	s.logger.WithFields(logrus.Fields{
		"baby_id":  babyID,
		"status":   status,
		"override": override,
	}).Info("Account status toggled by admin")

	return status, nil
}

// UpdateBabyInput holds the optional fields of an admin edit. Nil fields are
// left untouched.
type UpdateBabyInput struct {
	Name             *string
	BirthDate        *time.Time
	AgeMonths        *int
	WeightGrams      *int
	HeightCm         *int
	InitialRoutine   *string
	RoutineStartTime *string
	AccountStatus    *models.AccountStatus
}

// UpdateBaby applies a partial update to a baby. Writing the status the
// baby already has is ignored.
func (s *Service) UpdateBaby(ctx context.Context, babyID string, in UpdateBabyInput) (*models.Baby, error) {
	baby, err := s.GetBaby(ctx, babyID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		baby.Name = name
	}
	if in.BirthDate != nil {
		baby.BirthDate = in.BirthDate
	}
	if in.AgeMonths != nil {
		baby.AgeMonths = in.AgeMonths
	}
	if in.WeightGrams != nil {
		baby.WeightGrams = in.WeightGrams
	}
	if in.HeightCm != nil {
		baby.HeightCm = in.HeightCm
	}
	if in.InitialRoutine != nil {
		baby.InitialRoutine = *in.InitialRoutine
	}
	if in.RoutineStartTime != nil {
		baby.RoutineStartTime = *in.RoutineStartTime
	}
	suspended := false
	if in.AccountStatus != nil {
		if !in.AccountStatus.Valid() {
			return nil, fmt.Errorf("%w: unknown account status %q", ErrInvalidInput, *in.AccountStatus)
		}
		if *in.AccountStatus != baby.AccountStatus {
			suspended = *in.AccountStatus == models.AccountStatusSuspended
			baby.StatusOverride = routine.AdminOverride(baby, *in.AccountStatus, s.now())
			baby.AccountStatus = *in.AccountStatus
		}
	}

	updated, err := s.Babies.Update(ctx, baby)
	if err != nil {
		return nil, fmt.Errorf("failed to update baby %s: %w", babyID, err)
	}
	if suspended {
		s.metrics.AccountSuspended(metrics.ReasonAdmin)
	}

	return updated, nil
}
