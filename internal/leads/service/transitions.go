package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/repository"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/transport"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/apperr"
)

// Transition applies an administrative event to one track of a lead.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, trackName string, req transport.TransitionRequest, actor string) (transport.TransitionResponse, error) {
	track, err := domain.ParseTrack(trackName)
	if err != nil {
		return transport.TransitionResponse{}, apperr.BadRequest(err.Error())
	}
	event, err := domain.ParseEvent(req.Event)
	if err != nil {
		return transport.TransitionResponse{}, apperr.BadRequest(err.Error())
	}

	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.TransitionResponse{}, err
	}

	from := lead.StateOf(track).Stage
	to, err := domain.NextStage(from, event)
	switch {
	case errors.Is(err, domain.ErrTrackNotApplicable):
		return transport.TransitionResponse{}, apperr.Conflict(msgTrackUnavailable)
	case errors.Is(err, domain.ErrInvalidTransition):
		return transport.TransitionResponse{}, apperr.Conflict(fmt.Sprintf("cannot apply %s while %s track is %s", event, track, from))
	case err != nil:
		return transport.TransitionResponse{}, apperr.BadRequest(err.Error())
	}

	update, err := s.buildUpdate(lead.ID, track, from, to, event, req)
	if err != nil {
		return transport.TransitionResponse{}, err
	}

	if event == domain.EventSendQuote && s.issuer == nil {
		return transport.TransitionResponse{}, apperr.Internal("decision links are not configured")
	}

	if err := s.repo.ApplyTransition(ctx, update); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return transport.TransitionResponse{}, apperr.Conflict("the lead was changed by someone else, reload and retry")
		}
		return transport.TransitionResponse{}, err
	}

	// Only the caller that won the stage compare-and-set mints a token, so the
	// link it returns is the one stored for the track.
	var (
		link   string
		quoted *events.QuoteIssued
	)
	if event == domain.EventSendQuote {
		token, expiresAt, err := s.issuer.Issue(ctx, lead.ID, track)
		if err != nil {
			if revertErr := s.repo.RevertQuote(ctx, lead.ID, track, from, s.now()); revertErr != nil {
				s.log.Error("failed to revert quote after token issue failure", "lead_id", lead.ID, "track", track, "error", revertErr)
			}
			return transport.TransitionResponse{}, fmt.Errorf("issue decision token: %w", err)
		}
		link = s.DecisionLink(token)
		quoted = &events.QuoteIssued{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			LeadRef:      lead.Ref,
			Track:        string(track),
			FullName:     lead.FullName,
			Email:        deref(lead.Email),
			QuotedAmount: *req.QuotedAmount,
			DecisionURL:  link,
			ExpiresAt:    expiresAt,
		}
	}

	s.metrics.ObserveStageTransition(string(track), string(to))
	s.annotate(ctx, lead.ID, string(track)+".stage", fmt.Sprintf("%s -> %s by %s", from, to, actor))
	s.eventBus.Publish(ctx, events.StageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Track:     string(track),
		From:      string(from),
		To:        string(to),
		Actor:     actor,
	})
	if quoted != nil {
		s.eventBus.Publish(ctx, *quoted)
	}

	resp, err := s.GetByID(ctx, lead.ID)
	if err != nil {
		return transport.TransitionResponse{}, err
	}
	return transport.TransitionResponse{Lead: resp, DecisionLink: link}, nil
}

func (s *Service) buildUpdate(leadID uuid.UUID, track domain.Track, from, to domain.Stage, event domain.Event, req transport.TransitionRequest) (repository.TransitionUpdate, error) {
	now := s.now()
	update := repository.TransitionUpdate{LeadID: leadID, Track: track, From: from, To: to, At: now}

	switch event {
	case domain.EventSendQuote:
		if req.QuotedAmount == nil || *req.QuotedAmount < 0 {
			return update, apperr.Field("quotedAmount", "required")
		}
		feasible := true
		update.Feasible = &feasible
		update.QuotedAmount = req.QuotedAmount
		update.QuoteSentAt = &now
	case domain.EventSendInvoice:
		number := strings.TrimSpace(req.InvoiceNumber)
		if number == "" {
			return update, apperr.Field("invoiceNumber", "required")
		}
		update.InvoiceNumber = &number
		if link := strings.TrimSpace(req.InvoiceLink); link != "" {
			update.InvoiceLink = &link
		}
		update.InvoiceSentAt = &now
	case domain.EventRecordPayment:
		update.PaymentReceivedAt = &now
	case domain.EventComplete:
		update.CompletedAt = &now
	case domain.EventMarkNotFeasible:
		feasible := false
		update.Feasible = &feasible
	}
	return update, nil
}
