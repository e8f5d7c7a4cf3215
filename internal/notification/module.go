// Package notification turns domain events into outbound email. Domain
// modules publish events and never talk to email providers directly.
package notification

import (
	"context"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/email"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/config"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	dispatcher *Dispatcher
	adminEmail string
	log        *logger.Logger
}

func New(dispatcher *Dispatcher, cfg config.NotificationConfig, log *logger.Logger) *Module {
	if log == nil {
		log = logger.Discard()
	}
	return &Module{
		dispatcher: dispatcher,
		adminEmail: cfg.GetAdminNotifyEmail(),
		log:        log,
	}
}

// RegisterHandlers subscribes the module to the events it mails about.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadSubmitted{}.EventName(), m)
	bus.Subscribe(events.QuoteIssued{}.EventName(), m)
	bus.Subscribe(events.DecisionRecorded{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadSubmitted:
		return m.handleLeadSubmitted(e)
	case events.QuoteIssued:
		return m.handleQuoteIssued(e)
	case events.DecisionRecorded:
		return m.handleDecisionRecorded(e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadSubmitted(e events.LeadSubmitted) error {
	data := email.LeadData{
		LeadRef:          e.LeadRef,
		FullName:         e.FullName,
		Phone:            e.Phone,
		Email:            e.Email,
		SetupType:        e.SetupType,
		Emirate:          e.Emirate,
		Activity:         e.Activity,
		NeedsBankAccount: e.NeedsBankAccount,
		Notes:            e.Notes,
	}

	var msgs []email.Message
	if m.adminEmail != "" {
		msg, err := email.LeadAdminMessage(m.adminEmail, data)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if e.Email != "" {
		msg, err := email.LeadAckMessage(data)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	m.dispatcher.DispatchAll(msgs...)
	return nil
}

func (m *Module) handleQuoteIssued(e events.QuoteIssued) error {
	if e.Email == "" {
		m.log.Warn("quote issued for lead without email", "leadId", e.LeadID, "track", e.Track)
		return nil
	}

	msg, err := email.QuoteMessage(e.Email, email.QuoteData{
		LeadRef:      e.LeadRef,
		FullName:     e.FullName,
		Track:        e.Track,
		QuotedAmount: e.QuotedAmount,
		DecisionURL:  e.DecisionURL,
		ExpiresAt:    e.ExpiresAt,
	})
	if err != nil {
		return err
	}

	m.dispatcher.Dispatch(msg)
	return nil
}

func (m *Module) handleDecisionRecorded(e events.DecisionRecorded) error {
	data := email.DecisionData{
		LeadRef:   e.LeadRef,
		FullName:  e.FullName,
		Track:     e.Track,
		Decision:  e.Decision,
		Reason:    e.Reason,
		DecidedAt: e.DecidedAt,
	}

	var msgs []email.Message
	if e.Email != "" {
		msg, err := email.DecisionAckMessage(e.Email, data)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if m.adminEmail != "" {
		msg, err := email.DecisionAdminMessage(m.adminEmail, data)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	m.dispatcher.DispatchAll(msgs...)
	return nil
}
