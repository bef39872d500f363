package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/repository"
)

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new sleep event repository
func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, baby_id, event_type, event_time, comments, day_number,
	wake_reason, food_type, food_amount, duration_minutes, created_at`

func (r *eventRepository) Create(ctx context.Context, event *models.SleepEvent) (*models.SleepEvent, error) {
	query := `
		INSERT INTO sleep_events (id, baby_id, event_type, event_time, comments, day_number,
			wake_reason, food_type, food_amount, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.BabyID,
		event.Type,
		event.Time,
		event.Comments,
		event.DayNumber,
		event.WakeReason,
		event.FoodType,
		event.FoodAmount,
		event.DurationMinutes,
		event.CreatedAt,
	).Scan(&event.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create sleep event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) GetByBabyID(ctx context.Context, babyID string) ([]*models.SleepEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM sleep_events WHERE baby_id = $1 ORDER BY event_time DESC`
	return r.query(ctx, query, babyID)
}

func (r *eventRepository) GetByBabyAndDay(ctx context.Context, babyID string, dayNumber int) ([]*models.SleepEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM sleep_events WHERE baby_id = $1 AND day_number = $2 ORDER BY event_time DESC`
	return r.query(ctx, query, babyID, dayNumber)
}

func (r *eventRepository) GetBetween(ctx context.Context, babyID string, from, to time.Time) ([]*models.SleepEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM sleep_events
		WHERE baby_id = $1 AND event_time >= $2 AND event_time < $3
		ORDER BY event_time ASC, created_at ASC`
	return r.query(ctx, query, babyID, from, to)
}

func (r *eventRepository) query(ctx context.Context, query string, args ...any) ([]*models.SleepEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sleep events: %w", err)
	}
	defer rows.Close()

	var events []*models.SleepEvent
	for rows.Next() {
		e := &models.SleepEvent{}
		if err := rows.Scan(
			&e.ID,
			&e.BabyID,
			&e.Type,
			&e.Time,
			&e.Comments,
			&e.DayNumber,
			&e.WakeReason,
			&e.FoodType,
			&e.FoodAmount,
			&e.DurationMinutes,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sleep event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sleep events: %w", err)
	}

	return events, nil
}
