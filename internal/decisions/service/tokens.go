package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/auth/token"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions/repository"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
	leadsrepo "github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/repository"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/apperr"
)

const (
	DefaultTokenTTL = 30 * 24 * time.Hour

	msgTokenMissing = "a valid decision link is required"
	msgTokenInvalid = "this decision link is invalid or has expired"
)

var (
	// ErrMalformedToken means the caller sent no token or something that cannot be one.
	ErrMalformedToken = errors.New("malformed decision token")
	// ErrInvalidToken means a well-formed token is unknown, expired or no longer
	// points at a track that can take a decision.
	ErrInvalidToken = errors.New("invalid decision token")
)

// TokenStore persists hashed decision tokens.
type TokenStore interface {
	Upsert(ctx context.Context, rec repository.TokenRecord) error
	GetByHash(ctx context.Context, hash string) (repository.TokenRecord, error)
	MarkViewed(ctx context.Context, hash string, at time.Time) (bool, error)
}

// LeadStore reads leads and records decisions on them.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	RecordDecision(ctx context.Context, leadID uuid.UUID, track domain.Track, expected domain.Stage, decision domain.Decision, reason *string, at time.Time) (bool, error)
}

// Resolution is a token that passed every check, with the lead it addresses.
type Resolution struct {
	Lead  domain.Lead
	Track domain.Track
	Token repository.TokenRecord
}

// State returns the addressed track.
func (r Resolution) State() domain.TrackState {
	return r.Lead.StateOf(r.Track)
}

// Tokens issues and resolves quote decision tokens.
type Tokens struct {
	store TokenStore
	leads LeadStore
	ttl   time.Duration
	now   func() time.Time
}

func NewTokens(store TokenStore, leads LeadStore, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{
		store: store,
		leads: leads,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Issue mints a token for the lead's track, replacing any earlier one.
func (t *Tokens) Issue(ctx context.Context, leadID uuid.UUID, track domain.Track) (string, time.Time, error) {
	raw, err := token.GenerateRandomToken(token.DecisionTokenBytes)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate decision token: %w", err)
	}

	now := t.now()
	rec := repository.TokenRecord{
		LeadID:    leadID,
		Track:     track,
		TokenHash: token.HashSHA256(raw),
		ExpiresAt: now.Add(t.ttl),
		CreatedAt: now,
	}
	if err := t.store.Upsert(ctx, rec); err != nil {
		return "", time.Time{}, err
	}
	return raw, rec.ExpiresAt, nil
}

// Resolve checks raw and loads the lead it addresses. Tracks that already
// carry a decision still resolve so replays can observe it.
func (t *Tokens) Resolve(ctx context.Context, raw string) (Resolution, error) {
	if !token.IsWellFormed(raw, token.DecisionTokenBytes) {
		return Resolution{}, ErrMalformedToken
	}

	rec, err := t.store.GetByHash(ctx, token.HashSHA256(raw))
	if errors.Is(err, repository.ErrNotFound) {
		return Resolution{}, ErrInvalidToken
	}
	if err != nil {
		return Resolution{}, err
	}
	if !t.now().Before(rec.ExpiresAt) {
		return Resolution{}, ErrInvalidToken
	}

	lead, err := t.leads.GetByID(ctx, rec.LeadID)
	if errors.Is(err, leadsrepo.ErrNotFound) {
		return Resolution{}, ErrInvalidToken
	}
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Lead: lead, Track: rec.Track, Token: rec}
	state := res.State()
	if _, _, decided := state.RecordedDecision(); decided {
		return res, nil
	}
	if !state.Stage.AcceptsDecision() {
		return Resolution{}, ErrInvalidToken
	}
	return res, nil
}

// View records the first time the prospect opened the link. Later calls are no-ops.
func (t *Tokens) View(ctx context.Context, raw string) (time.Time, error) {
	res, err := t.Resolve(ctx, raw)
	if err != nil {
		return time.Time{}, tokenError(err)
	}
	if res.Token.ViewedAt != nil {
		return *res.Token.ViewedAt, nil
	}

	at := t.now()
	if _, err := t.store.MarkViewed(ctx, res.Token.TokenHash, at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// tokenError translates token sentinels into their HTTP-facing kinds.
func tokenError(err error) error {
	switch {
	case errors.Is(err, ErrMalformedToken):
		return apperr.Wrap(apperr.KindUnauthorized, msgTokenMissing, err)
	case errors.Is(err, ErrInvalidToken):
		return apperr.Wrap(apperr.KindNotFound, msgTokenInvalid, err)
	}
	return err
}
