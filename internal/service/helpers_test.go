package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/repository"
	"github.com/Kerhoff/NochesTranquilas/internal/repository/memory"
)

var errBoom = errors.New("boom")

// flakySummaries fails Create while err is set.
type flakySummaries struct {
	repository.SummaryRepository
	err error
}

func (r *flakySummaries) Create(ctx context.Context, s *models.DailySummary) (*models.DailySummary, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.SummaryRepository.Create(ctx, s)
}

// flakyBabies fails Update while err is set. When otherEpoch is set, a
// concurrent writer stores it just before SetFirstEventAt runs.
type flakyBabies struct {
	repository.BabyRepository
	err        error
	otherEpoch *time.Time
}

func (r *flakyBabies) SetFirstEventAt(ctx context.Context, id string, at time.Time) (time.Time, error) {
	if r.otherEpoch != nil {
		if _, err := r.BabyRepository.SetFirstEventAt(ctx, id, *r.otherEpoch); err != nil {
			return time.Time{}, err
		}
	}
	return r.BabyRepository.SetFirstEventAt(ctx, id, at)
}

func (r *flakyBabies) Update(ctx context.Context, b *models.Baby) (*models.Baby, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.BabyRepository.Update(ctx, b)
}

func memoryRepositories(store *memory.Store, summaries repository.SummaryRepository) Repositories {
	return Repositories{
		Users:         store.Users(),
		Credentials:   store.Credentials(),
		Babies:        store.Babies(),
		Events:        store.Events(),
		Summaries:     summaries,
		Notifications: store.Notifications(),
	}
}

// recordingNotifier captures owner notifications.
type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	texts  []string
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, title, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	n.texts = append(n.texts, text)
	return n.err
}
