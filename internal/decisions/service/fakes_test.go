package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions/repository"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
	leadsrepo "github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/repository"
)

type memTokens struct {
	mu      sync.Mutex
	byTrack map[string]repository.TokenRecord
}

func newMemTokens() *memTokens {
	return &memTokens{byTrack: make(map[string]repository.TokenRecord)}
}

func (m *memTokens) Upsert(_ context.Context, rec repository.TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTrack[rec.LeadID.String()+"|"+string(rec.Track)] = rec
	return nil
}

func (m *memTokens) GetByHash(_ context.Context, hash string) (repository.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.byTrack {
		if rec.TokenHash == hash {
			return rec, nil
		}
	}
	return repository.TokenRecord{}, repository.ErrNotFound
}

func (m *memTokens) MarkViewed(_ context.Context, hash string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, rec := range m.byTrack {
		if rec.TokenHash == hash && rec.ViewedAt == nil {
			rec.ViewedAt = &at
			m.byTrack[key] = rec
			return true, nil
		}
	}
	return false, nil
}

// memLeads applies decisions with the same guard as the SQL update.
type memLeads struct {
	mu     sync.Mutex
	leads  map[uuid.UUID]domain.Lead
	writes int
}

func newMemLeads() *memLeads {
	return &memLeads{leads: make(map[uuid.UUID]domain.Lead)}
}

func (m *memLeads) put(lead domain.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[lead.ID] = lead
}

func (m *memLeads) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, leadsrepo.ErrNotFound
	}
	return lead, nil
}

func (m *memLeads) RecordDecision(_ context.Context, id uuid.UUID, track domain.Track, expected domain.Stage, decision domain.Decision, reason *string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return false, nil
	}
	state := &lead.Company
	if track == domain.TrackBank {
		state = &lead.Bank
	}
	if state.Stage != expected || state.ProceededAt != nil || state.DeclinedAt != nil || state.QuestionsAt != nil {
		return false, nil
	}
	switch decision {
	case domain.DecisionProceed:
		state.ProceededAt = &at
	case domain.DecisionDecline:
		state.DeclinedAt = &at
		state.DeclineReason = reason
		state.Stage = domain.StageDeclined
	case domain.DecisionQuestions:
		state.QuestionsAt = &at
		state.QuestionsText = reason
	}
	m.leads[id] = lead
	m.writes++
	return true, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) decisions() []events.DecisionRecorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.DecisionRecorded
	for _, e := range b.events {
		if d, ok := e.(events.DecisionRecorded); ok {
			out = append(out, d)
		}
	}
	return out
}

func quotedLead(track domain.Track) domain.Lead {
	amount := int64(12500)
	now := time.Now().UTC()
	email := "jane@example.com"
	lead := domain.Lead{
		ID:        uuid.New(),
		FullName:  "Jane Doe",
		Phone:     "+971501234567",
		Email:     &email,
		SetupType: domain.SetupFreezone,
		Company:   domain.NewTrackState(true),
		Bank:      domain.NewTrackState(track == domain.TrackBank),
		CreatedAt: now,
	}
	lead.Ref = domain.NewLeadRef(now, lead.ID)
	state := &lead.Company
	if track == domain.TrackBank {
		lead.SetupType = domain.SetupBank
		lead.NeedsBankAccount = true
		state = &lead.Bank
	}
	state.Stage = domain.StageQuoted
	state.QuotedAmount = &amount
	state.QuoteSentAt = &now
	return lead
}

type fixture struct {
	tokens    *Tokens
	processor *Processor
	store     *memTokens
	leads     *memLeads
	bus       *recordingBus
}

func newFixture() *fixture {
	store := newMemTokens()
	leads := newMemLeads()
	bus := &recordingBus{}
	tokens := NewTokens(store, leads, 0)
	return &fixture{
		tokens:    tokens,
		processor: NewProcessor(tokens, leads, bus, nil, nil),
		store:     store,
		leads:     leads,
		bus:       bus,
	}
}

// issue stores lead and returns a fresh token for its track.
func (f *fixture) issue(lead domain.Lead, track domain.Track) string {
	f.leads.put(lead)
	raw, _, err := f.tokens.Issue(context.Background(), lead.ID, track)
	if err != nil {
		panic(err)
	}
	return raw
}
