package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions/transport"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/apperr"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/metrics"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/sanitize"
)

const (
	maxReasonRunes = 1000

	msgReasonRequired = "please tell us what you would like to ask"
	msgStageMoved     = "this quote is no longer open for a decision"
)

// Processor applies prospect decisions at most once per lead and track.
type Processor struct {
	tokens   *Tokens
	leads    LeadStore
	eventBus events.Bus
	log      *logger.Logger
	metrics  *metrics.WorkflowMetrics
	now      func() time.Time
}

func NewProcessor(tokens *Tokens, leads LeadStore, eventBus events.Bus, log *logger.Logger, m *metrics.WorkflowMetrics) *Processor {
	if log == nil {
		log = logger.Discard()
	}
	return &Processor{
		tokens:   tokens,
		leads:    leads,
		eventBus: eventBus,
		log:      log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Details returns what the decision page shows for a token.
func (p *Processor) Details(ctx context.Context, raw string) (transport.DecisionDetailsResponse, error) {
	res, err := p.tokens.Resolve(ctx, raw)
	if err != nil {
		return transport.DecisionDetailsResponse{}, tokenError(err)
	}

	state := res.State()
	resp := transport.DecisionDetailsResponse{
		LeadRef:      res.Lead.Ref,
		FullName:     res.Lead.FullName,
		Track:        string(res.Track),
		Stage:        string(state.Stage),
		QuotedAmount: state.QuotedAmount,
		QuoteSentAt:  state.QuoteSentAt,
		ExpiresAt:    res.Token.ExpiresAt,
		ViewedAt:     res.Token.ViewedAt,
	}
	if decision, at, ok := state.RecordedDecision(); ok {
		resp.Decision = string(decision)
		resp.DecidedAt = &at
	}
	return resp, nil
}

// View marks the link as opened.
func (p *Processor) View(ctx context.Context, raw string) (transport.ViewResponse, error) {
	at, err := p.tokens.View(ctx, raw)
	if err != nil {
		return transport.ViewResponse{}, err
	}
	return transport.ViewResponse{OK: true, ViewedAt: at}, nil
}

// Decide records decisionName for the token's track. A track that already
// carries a decision reports it with AlreadyDecided set, whatever was asked.
func (p *Processor) Decide(ctx context.Context, raw, decisionName, reasonText string) (transport.DecisionResult, error) {
	decision, err := domain.ParseDecision(decisionName)
	if err != nil {
		return transport.DecisionResult{}, apperr.Validation(err.Error()).WithDetails(map[string]string{"decision": "oneof"})
	}
	var reason *string
	if cleaned := strings.TrimSpace(sanitize.Truncate(sanitize.Text(reasonText), maxReasonRunes)); cleaned != "" {
		reason = &cleaned
	}
	if decision == domain.DecisionProceed {
		reason = nil
	}

	res, err := p.tokens.Resolve(ctx, raw)
	if err != nil {
		return transport.DecisionResult{}, tokenError(err)
	}

	if prior, at, ok := res.State().RecordedDecision(); ok {
		return p.replay(res, prior, at), nil
	}
	if decision == domain.DecisionQuestions && reason == nil {
		return transport.DecisionResult{}, apperr.Validation(msgReasonRequired).WithDetails(map[string]string{"reason": "required"})
	}

	at := p.now()
	won, err := p.leads.RecordDecision(ctx, res.Lead.ID, res.Track, res.State().Stage, decision, reason, at)
	if err != nil {
		p.log.DatabaseError("record_decision", err)
		return transport.DecisionResult{}, fmt.Errorf("record decision: %w", err)
	}
	if !won {
		return p.afterLostRace(ctx, res)
	}

	p.metrics.ObserveDecision(string(res.Track), string(decision), false)
	p.log.DecisionRecorded(res.Lead.ID.String(), string(res.Track), string(decision), false)

	if p.eventBus != nil {
		p.eventBus.Publish(ctx, events.DecisionRecorded{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    res.Lead.ID,
			LeadRef:   res.Lead.Ref,
			Track:     string(res.Track),
			FullName:  res.Lead.FullName,
			Email:     deref(res.Lead.Email),
			Decision:  string(decision),
			Reason:    deref(reason),
			DecidedAt: at,
		})
	}

	return transport.DecisionResult{
		OK:        true,
		LeadRef:   res.Lead.Ref,
		Track:     string(res.Track),
		Decision:  string(decision),
		DecidedAt: at,
	}, nil
}

// afterLostRace re-reads the lead once the conditional write matched nothing.
func (p *Processor) afterLostRace(ctx context.Context, res Resolution) (transport.DecisionResult, error) {
	lead, err := p.leads.GetByID(ctx, res.Lead.ID)
	if err != nil {
		return transport.DecisionResult{}, fmt.Errorf("reload lead after decision race: %w", err)
	}
	res.Lead = lead
	if prior, at, ok := res.State().RecordedDecision(); ok {
		return p.replay(res, prior, at), nil
	}
	return transport.DecisionResult{}, apperr.Conflict(msgStageMoved)
}

func (p *Processor) replay(res Resolution, decision domain.Decision, at time.Time) transport.DecisionResult {
	p.metrics.ObserveDecision(string(res.Track), string(decision), true)
	p.log.DecisionRecorded(res.Lead.ID.String(), string(res.Track), string(decision), true)
	return transport.DecisionResult{
		OK:             true,
		LeadRef:        res.Lead.Ref,
		Track:          string(res.Track),
		Decision:       string(decision),
		DecidedAt:      at,
		AlreadyDecided: true,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
