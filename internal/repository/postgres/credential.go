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

type credentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *sql.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	query := `
		INSERT INTO user_credentials (id, user_id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	cred.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		cred.ID,
		cred.UserID,
		cred.Username,
		cred.PasswordHash,
		cred.CreatedAt,
	).Scan(&cred.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return cred, nil
}

func (r *credentialRepository) GetByUsername(ctx context.Context, username string) (*models.Credential, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *credentialRepository) GetByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	return r.getOne(ctx, `WHERE user_id = $1`, userID)
}

func (r *credentialRepository) getOne(ctx context.Context, where string, arg any) (*models.Credential, error) {
	query := `SELECT id, user_id, username, password_hash, created_at FROM user_credentials ` + where

	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&cred.ID,
		&cred.UserID,
		&cred.Username,
		&cred.PasswordHash,
		&cred.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return cred, nil
}
