package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
)

// ErrNotFound is returned by updates that matched no row. Lookups return
// nil, nil instead.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

// CredentialRepository defines the interface for login credentials
type CredentialRepository interface {
	Create(ctx context.Context, cred *models.Credential) (*models.Credential, error)
	GetByUsername(ctx context.Context, username string) (*models.Credential, error)
	GetByUserID(ctx context.Context, userID string) (*models.Credential, error)
}

// BabyRepository defines the interface for baby account operations
type BabyRepository interface {
	Create(ctx context.Context, baby *models.Baby) (*models.Baby, error)
	GetByID(ctx context.Context, id string) (*models.Baby, error)
	GetByUserID(ctx context.Context, userID string) (*models.Baby, error)
	List(ctx context.Context) ([]*models.Baby, error)
	Update(ctx context.Context, baby *models.Baby) (*models.Baby, error)
	UpdateStatus(ctx context.Context, id string, status models.AccountStatus, override bool) error
	// SetFirstEventAt stores the day-numbering epoch unless one is already
	// set, and returns the epoch that is stored afterwards.
	SetFirstEventAt(ctx context.Context, id string, at time.Time) (time.Time, error)
}

// EventRepository defines the interface for sleep event operations. Events
// are append-only.
type EventRepository interface {
	Create(ctx context.Context, event *models.SleepEvent) (*models.SleepEvent, error)
	GetByBabyID(ctx context.Context, babyID string) ([]*models.SleepEvent, error)
	GetByBabyAndDay(ctx context.Context, babyID string, dayNumber int) ([]*models.SleepEvent, error)
	// GetBetween returns events with from <= time < to, oldest first.
	GetBetween(ctx context.Context, babyID string, from, to time.Time) ([]*models.SleepEvent, error)
}

// SummaryRepository defines the interface for daily summary operations
type SummaryRepository interface {
	Create(ctx context.Context, summary *models.DailySummary) (*models.DailySummary, error)
	GetByBabyID(ctx context.Context, babyID string) ([]*models.DailySummary, error)
}

// NotificationRepository defines the interface for the admin inbox
type NotificationRepository interface {
	Create(ctx context.Context, n *models.AdminNotification) (*models.AdminNotification, error)
	List(ctx context.Context, filters NotificationFilters) ([]*models.AdminNotification, error)
	MarkRead(ctx context.Context, id string) error
}

// NotificationFilters represents filters for querying admin notifications
type NotificationFilters struct {
	UnreadOnly bool
	Limit      int
}
