package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/metrics"
	"github.com/Kerhoff/NochesTranquilas/internal/notify"
	"github.com/Kerhoff/NochesTranquilas/internal/repository"
	"github.com/Kerhoff/NochesTranquilas/pkg/hash"
)

// Repositories bundles the data-access collaborators of the service
type Repositories struct {
	Users         repository.UserRepository
	Credentials   repository.CredentialRepository
	Babies        repository.BabyRepository
	Events        repository.EventRepository
	Summaries     repository.SummaryRepository
	Notifications repository.NotificationRepository
}

// Service is the central business logic layer that holds all repositories
// and provides high-level methods for the application.
//
// Every call is request scoped: state is read fresh from the repositories
// and nothing is cached between calls.
type Service struct {
	logger       *logrus.Logger
	notifier     notify.Notifier
	metrics      *metrics.Metrics
	loc          *time.Location
	now          func() time.Time
	passwordCost int

	Users         repository.UserRepository
	Credentials   repository.CredentialRepository
	Babies        repository.BabyRepository
	Events        repository.EventRepository
	Summaries     repository.SummaryRepository
	Notifications repository.NotificationRepository
}

// Option customises a Service
type Option func(*Service)

// WithNotifier sets the owner notification sink
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics enables Prometheus counters
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLocation sets the time zone that defines "today" and clock renderings
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPasswordCost sets the bcrypt cost for new credentials
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger, repos Repositories, opts ...Option) *Service {
	s := &Service{
		logger:        logger,
		loc:           time.Local,
		now:           time.Now,
		passwordCost:  hash.DefaultCost,
		Users:         repos.Users,
		Credentials:   repos.Credentials,
		Babies:        repos.Babies,
		Events:        repos.Events,
		Summaries:     repos.Summaries,
		Notifications: repos.Notifications,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(logger)
	}
	return s
}

// Location returns the service time zone
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the current time according to the service clock
func (s *Service) Now() time.Time {
	return s.now()
}

// dayBounds returns the local calendar day containing t as [start, end).
func (s *Service) dayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}
