package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
)

var ErrNotFound = errors.New("decision token not found")

// DBTX is the subset of pgxpool.Pool the token store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TokenRecord is the stored form of a decision token. The raw token is never persisted.
type TokenRecord struct {
	LeadID    uuid.UUID
	Track     domain.Track
	TokenHash string
	ExpiresAt time.Time
	ViewedAt  *time.Time
	CreatedAt time.Time
}

type Repository struct {
	pool DBTX
}

func New(pool DBTX) *Repository {
	return &Repository{pool: pool}
}

// Upsert stores rec as the only token for its lead and track.
func (r *Repository) Upsert(ctx context.Context, rec TokenRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_decision_tokens (lead_id, track, token_hash, expires_at, viewed_at, created_at)
		VALUES ($1, $2, $3, $4, NULL, $5)
		ON CONFLICT (lead_id, track) DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			viewed_at = NULL,
			created_at = EXCLUDED.created_at
	`, rec.LeadID, string(rec.Track), rec.TokenHash, rec.ExpiresAt, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert decision token: %w", err)
	}
	return nil
}

func (r *Repository) GetByHash(ctx context.Context, hash string) (TokenRecord, error) {
	var (
		rec   TokenRecord
		track string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT lead_id, track, token_hash, expires_at, viewed_at, created_at
		FROM lead_decision_tokens
		WHERE token_hash = $1
	`, hash).Scan(&rec.LeadID, &track, &rec.TokenHash, &rec.ExpiresAt, &rec.ViewedAt, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TokenRecord{}, ErrNotFound
	}
	if err != nil {
		return TokenRecord{}, fmt.Errorf("get decision token: %w", err)
	}
	rec.Track = domain.Track(track)
	return rec, nil
}

// MarkViewed sets viewed_at the first time only. It reports whether this call set it.
func (r *Repository) MarkViewed(ctx context.Context, hash string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lead_decision_tokens SET viewed_at = $2
		WHERE token_hash = $1 AND viewed_at IS NULL
	`, hash, at)
	if err != nil {
		return false, fmt.Errorf("mark decision token viewed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteExpired removes tokens that expired before cutoff.
func (r *Repository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lead_decision_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired decision tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
