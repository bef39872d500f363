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

type summaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new daily summary repository
func NewSummaryRepository(db *sql.DB) repository.SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) Create(ctx context.Context, s *models.DailySummary) (*models.DailySummary, error) {
	query := `
		INSERT INTO daily_summaries (id, baby_id, day_number, summary_date, total_naps, total_nap_duration,
			longest_night_sleep, night_wakeups, final_wakeup_time, parent_observations, detailed_summary,
			simple_summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		s.ID,
		s.BabyID,
		s.DayNumber,
		s.SummaryDate,
		s.TotalNaps,
		s.TotalNapDuration,
		s.LongestNightSleep,
		s.NightWakeups,
		s.FinalWakeupTime,
		s.ParentObservations,
		s.DetailedSummary,
		s.SimpleSummary,
		s.CreatedAt,
	).Scan(&s.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create daily summary: %w", err)
	}

	return s, nil
}

func (r *summaryRepository) GetByBabyID(ctx context.Context, babyID string) ([]*models.DailySummary, error) {
	query := `
		SELECT id, baby_id, day_number, summary_date, total_naps, total_nap_duration, longest_night_sleep,
			night_wakeups, final_wakeup_time, parent_observations, detailed_summary, simple_summary, created_at
		FROM daily_summaries
		WHERE baby_id = $1
		ORDER BY summary_date DESC`

	rows, err := r.db.QueryContext(ctx, query, babyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*models.DailySummary
	for rows.Next() {
		s := &models.DailySummary{}
		if err := rows.Scan(
			&s.ID,
			&s.BabyID,
			&s.DayNumber,
			&s.SummaryDate,
			&s.TotalNaps,
			&s.TotalNapDuration,
			&s.LongestNightSleep,
			&s.NightWakeups,
			&s.FinalWakeupTime,
			&s.ParentObservations,
			&s.DetailedSummary,
			&s.SimpleSummary,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily summaries: %w", err)
	}

	return summaries, nil
}
