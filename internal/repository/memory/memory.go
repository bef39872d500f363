// Package memory keeps every repository in process memory. It backs the
// "memory" storage mode used for local runs and the handler tests; data is
// lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/repository"
)

// Store holds the data shared by the in-memory repositories
type Store struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	credentials   map[string]*models.Credential // by username
	babies        map[string]*models.Baby
	events        []*models.SleepEvent
	summaries     []*models.DailySummary
	notifications []*models.AdminNotification
	now           func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the clock used for CreatedAt and UpdatedAt stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		users:       make(map[string]*models.User),
		credentials: make(map[string]*models.Credential),
		babies:      make(map[string]*models.Baby),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Users returns the user repository backed by s
func (s *Store) Users() repository.UserRepository { return userRepository{s} }

// Credentials returns the credential repository backed by s
func (s *Store) Credentials() repository.CredentialRepository { return credentialRepository{s} }

// Babies returns the baby repository backed by s
func (s *Store) Babies() repository.BabyRepository { return babyRepository{s} }

// Events returns the event repository backed by s
func (s *Store) Events() repository.EventRepository { return eventRepository{s} }

// Summaries returns the summary repository backed by s
func (s *Store) Summaries() repository.SummaryRepository { return summaryRepository{s} }

// Notifications returns the admin notification repository backed by s
func (s *Store) Notifications() repository.NotificationRepository {
	return notificationRepository{s}
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s with ID %s: %w", entity, id, repository.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type userRepository struct{ *Store }

func (r userRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}
	user.CreatedAt = r.now()
	if user.LastSignedIn.IsZero() {
		user.LastSignedIn = user.CreatedAt
	}
	stored := *user
	r.users[user.ID] = &stored
	return user, nil
}

func (r userRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r userRepository) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r userRepository) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return nil, notFound("user", user.ID)
	}
	stored := *user
	r.users[user.ID] = &stored
	return user, nil
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

type credentialRepository struct{ *Store }

func (r credentialRepository) Create(_ context.Context, cred *models.Credential) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.credentials[cred.Username]; taken {
		return nil, fmt.Errorf("username %q already exists", cred.Username)
	}
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	cred.CreatedAt = r.now()
	stored := *cred
	r.credentials[cred.Username] = &stored
	return cred, nil
}

func (r credentialRepository) GetByUsername(_ context.Context, username string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.credentials[username]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r credentialRepository) GetByUserID(_ context.Context, userID string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.credentials {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Babies
// ---------------------------------------------------------------------------

type babyRepository struct{ *Store }

func (r babyRepository) Create(_ context.Context, baby *models.Baby) (*models.Baby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if baby.ID == "" {
		baby.ID = uuid.NewString()
	}
	if baby.AccountStatus == "" {
		baby.AccountStatus = models.AccountStatusActive
	}
	baby.CreatedAt = r.now()
	baby.UpdatedAt = baby.CreatedAt
	stored := *baby
	r.babies[baby.ID] = &stored
	return baby, nil
}

func (r babyRepository) GetByID(_ context.Context, id string) (*models.Baby, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.babies[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r babyRepository) GetByUserID(_ context.Context, userID string) (*models.Baby, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.babies {
		if b.UserID == userID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r babyRepository) List(_ context.Context) ([]*models.Baby, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	babies := make([]*models.Baby, 0, len(r.babies))
	for _, b := range r.babies {
		cp := *b
		babies = append(babies, &cp)
	}
	sort.Slice(babies, func(i, j int) bool {
		return babies[i].CreatedAt.After(babies[j].CreatedAt)
	})
	return babies, nil
}

func (r babyRepository) Update(_ context.Context, baby *models.Baby) (*models.Baby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.babies[baby.ID]; !ok {
		return nil, notFound("baby", baby.ID)
	}
	baby.UpdatedAt = r.now()
	stored := *baby
	r.babies[baby.ID] = &stored
	return baby, nil
}

func (r babyRepository) UpdateStatus(_ context.Context, id string, status models.AccountStatus, override bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.babies[id]
	if !ok {
		return notFound("baby", id)
	}
	b.AccountStatus = status
	b.StatusOverride = override
	b.UpdatedAt = r.now()
	return nil
}

func (r babyRepository) SetFirstEventAt(_ context.Context, id string, at time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.babies[id]
	if !ok {
		return time.Time{}, notFound("baby", id)
	}
	if b.FirstEventAt == nil {
		b.FirstEventAt = &at
		b.UpdatedAt = r.now()
	}
	return *b.FirstEventAt, nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

type eventRepository struct{ *Store }

func (r eventRepository) Create(_ context.Context, event *models.SleepEvent) (*models.SleepEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = r.now()
	stored := *event
	r.events = append(r.events, &stored)
	return event, nil
}

// selectEvents copies the matching events, sorted by time. Insertion order
// breaks ties.
func (r eventRepository) selectEvents(match func(*models.SleepEvent) bool, ascending bool) []*models.SleepEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := []*models.SleepEvent{}
	for _, e := range r.events {
		if match(e) {
			cp := *e
			events = append(events, &cp)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if ascending {
			return events[i].Time.Before(events[j].Time)
		}
		return events[i].Time.After(events[j].Time)
	})
	return events
}

func (r eventRepository) GetByBabyID(_ context.Context, babyID string) ([]*models.SleepEvent, error) {
	return r.selectEvents(func(e *models.SleepEvent) bool {
		return e.BabyID == babyID
	}, false), nil
}

func (r eventRepository) GetByBabyAndDay(_ context.Context, babyID string, dayNumber int) ([]*models.SleepEvent, error) {
	return r.selectEvents(func(e *models.SleepEvent) bool {
		return e.BabyID == babyID && e.DayNumber == dayNumber
	}, false), nil
}

func (r eventRepository) GetBetween(_ context.Context, babyID string, from, to time.Time) ([]*models.SleepEvent, error) {
	return r.selectEvents(func(e *models.SleepEvent) bool {
		return e.BabyID == babyID && !e.Time.Before(from) && e.Time.Before(to)
	}, true), nil
}

// ---------------------------------------------------------------------------
// Summaries
// ---------------------------------------------------------------------------

type summaryRepository struct{ *Store }

func (r summaryRepository) Create(_ context.Context, summary *models.DailySummary) (*models.DailySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	summary.CreatedAt = r.now()
	stored := *summary
	r.summaries = append(r.summaries, &stored)
	return summary, nil
}

func (r summaryRepository) GetByBabyID(_ context.Context, babyID string) ([]*models.DailySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := []*models.DailySummary{}
	for i := len(r.summaries) - 1; i >= 0; i-- {
		if r.summaries[i].BabyID == babyID {
			cp := *r.summaries[i]
			summaries = append(summaries, &cp)
		}
	}
	return summaries, nil
}

// ---------------------------------------------------------------------------
// Admin notifications
// ---------------------------------------------------------------------------

type notificationRepository struct{ *Store }

func (r notificationRepository) Create(_ context.Context, n *models.AdminNotification) (*models.AdminNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = r.now()
	stored := *n
	r.notifications = append(r.notifications, &stored)
	return n, nil
}

func (r notificationRepository) List(_ context.Context, filters repository.NotificationFilters) ([]*models.AdminNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*models.AdminNotification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if filters.UnreadOnly && n.IsRead {
			continue
		}
		cp := *n
		items = append(items, &cp)
		if filters.Limit > 0 && len(items) == filters.Limit {
			break
		}
	}
	return items, nil
}

func (r notificationRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return notFound("notification", id)
}
