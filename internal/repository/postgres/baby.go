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

type babyRepository struct {
	db *sql.DB
}

// NewBabyRepository creates a new baby repository
func NewBabyRepository(db *sql.DB) repository.BabyRepository {
	return &babyRepository{db: db}
}

const babyColumns = `id, user_id, name, birth_date, age_months, weight_grams, height_cm, photo_url,
	initial_routine, routine_start_time, first_event_at, account_status, status_override, created_at, updated_at`

func scanBaby(row interface{ Scan(...any) error }) (*models.Baby, error) {
	baby := &models.Baby{}
	err := row.Scan(
		&baby.ID,
		&baby.UserID,
		&baby.Name,
		&baby.BirthDate,
		&baby.AgeMonths,
		&baby.WeightGrams,
		&baby.HeightCm,
		&baby.PhotoURL,
		&baby.InitialRoutine,
		&baby.RoutineStartTime,
		&baby.FirstEventAt,
		&baby.AccountStatus,
		&baby.StatusOverride,
		&baby.CreatedAt,
		&baby.UpdatedAt,
	)
	return baby, err
}

func (r *babyRepository) Create(ctx context.Context, baby *models.Baby) (*models.Baby, error) {
	query := `
		INSERT INTO babies (id, user_id, name, birth_date, age_months, weight_grams, height_cm, photo_url,
			initial_routine, routine_start_time, account_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	if baby.ID == "" {
		baby.ID = uuid.NewString()
	}
	if baby.AccountStatus == "" {
		baby.AccountStatus = models.AccountStatusActive
	}
	now := time.Now()
	baby.CreatedAt = now
	baby.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		baby.ID,
		baby.UserID,
		baby.Name,
		baby.BirthDate,
		baby.AgeMonths,
		baby.WeightGrams,
		baby.HeightCm,
		baby.PhotoURL,
		baby.InitialRoutine,
		baby.RoutineStartTime,
		baby.AccountStatus,
		baby.CreatedAt,
		baby.UpdatedAt,
	).Scan(&baby.CreatedAt, &baby.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create baby: %w", err)
	}

	return baby, nil
}

func (r *babyRepository) GetByID(ctx context.Context, id string) (*models.Baby, error) {
	query := `SELECT ` + babyColumns + ` FROM babies WHERE id = $1`

	baby, err := scanBaby(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get baby by ID: %w", err)
	}

	return baby, nil
}

func (r *babyRepository) GetByUserID(ctx context.Context, userID string) (*models.Baby, error) {
	query := `SELECT ` + babyColumns + ` FROM babies WHERE user_id = $1 ORDER BY created_at LIMIT 1`

	baby, err := scanBaby(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get baby by user ID: %w", err)
	}

	return baby, nil
}

func (r *babyRepository) List(ctx context.Context) ([]*models.Baby, error) {
	query := `SELECT ` + babyColumns + ` FROM babies ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list babies: %w", err)
	}
	defer rows.Close()

	var babies []*models.Baby
	for rows.Next() {
		baby, err := scanBaby(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan baby: %w", err)
		}
		babies = append(babies, baby)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating babies: %w", err)
	}

	return babies, nil
}

func (r *babyRepository) Update(ctx context.Context, baby *models.Baby) (*models.Baby, error) {
	query := `
		UPDATE babies
		SET name = $2, birth_date = $3, age_months = $4, weight_grams = $5, height_cm = $6, photo_url = $7,
			initial_routine = $8, routine_start_time = $9, account_status = $10, status_override = $11, updated_at = $12
		WHERE id = $1`

	baby.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		baby.ID,
		baby.Name,
		baby.BirthDate,
		baby.AgeMonths,
		baby.WeightGrams,
		baby.HeightCm,
		baby.PhotoURL,
		baby.InitialRoutine,
		baby.RoutineStartTime,
		baby.AccountStatus,
		baby.StatusOverride,
		baby.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update baby: %w", err)
	}

	if err := expectOneRow(result, "baby", baby.ID); err != nil {
		return nil, err
	}

	return baby, nil
}

func (r *babyRepository) UpdateStatus(ctx context.Context, id string, status models.AccountStatus, override bool) error {
	query := `UPDATE babies SET account_status = $2, status_override = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, override, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update baby status: %w", err)
	}

	return expectOneRow(result, "baby", id)
}

func (r *babyRepository) SetFirstEventAt(ctx context.Context, id string, at time.Time) (time.Time, error) {
	query := `
		UPDATE babies SET first_event_at = COALESCE(first_event_at, $2), updated_at = $3
		WHERE id = $1
		RETURNING first_event_at`

	var stored time.Time
	if err := r.db.QueryRowContext(ctx, query, id, at, time.Now()).Scan(&stored); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, fmt.Errorf("baby with ID %s: %w", id, repository.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("failed to set first event time: %w", err)
	}

	return stored, nil
}
