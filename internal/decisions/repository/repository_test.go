package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, New(mock)
}

func TestUpsertReplacesTokenForTrack(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now().UTC()
	rec := TokenRecord{
		LeadID:    uuid.New(),
		Track:     domain.TrackCompany,
		TokenHash: "hash",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	mock.ExpectExec("ON CONFLICT \\(lead_id, track\\) DO UPDATE").
		WithArgs(rec.LeadID, "company", "hash", rec.ExpiresAt, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByHash(t *testing.T) {
	mock, repo := newMock(t)
	id := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"lead_id", "track", "token_hash", "expires_at", "viewed_at", "created_at"}).
		AddRow(id, "bank", "hash", now.Add(time.Hour), &now, now)
	mock.ExpectQuery("FROM lead_decision_tokens").WithArgs("hash").WillReturnRows(rows)

	rec, err := repo.GetByHash(context.Background(), "hash")
	require.NoError(t, err)
	require.Equal(t, id, rec.LeadID)
	require.Equal(t, domain.TrackBank, rec.Track)
	require.NotNil(t, rec.ViewedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByHashNotFound(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("FROM lead_decision_tokens").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByHash(context.Background(), "missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestMarkViewedOnlyOnce(t *testing.T) {
	mock, repo := newMock(t)
	at := time.Now().UTC()

	mock.ExpectExec("viewed_at IS NULL").WithArgs("hash", at).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("viewed_at IS NULL").WithArgs("hash", at).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	first, err := repo.MarkViewed(context.Background(), "hash", at)
	require.NoError(t, err)
	require.True(t, first)

	second, err := repo.MarkViewed(context.Background(), "hash", at)
	require.NoError(t, err)
	require.False(t, second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpired(t *testing.T) {
	mock, repo := newMock(t)
	cutoff := time.Now().UTC()

	mock.ExpectExec("DELETE FROM lead_decision_tokens").WithArgs(cutoff).WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
