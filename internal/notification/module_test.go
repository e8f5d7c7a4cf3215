package notification

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
)

type testNotificationConfig struct{ admin string }

func (c testNotificationConfig) GetAppBaseURL() string           { return "https://uaebusinessdesk.com" }
func (c testNotificationConfig) GetAdminNotifyEmail() string     { return c.admin }
func (c testNotificationConfig) GetNotifyTimeout() time.Duration { return time.Second }
func (c testNotificationConfig) GetNotifyMaxPerSecond() float64  { return 0 }

func newTestModule(admin string) (*Module, *recordingSender, *Dispatcher) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, nil, nil)
	return New(d, testNotificationConfig{admin: admin}, nil), sender, d
}

func TestLeadSubmittedNotifiesAdminAndProspect(t *testing.T) {
	m, sender, d := newTestModule("ops@uaebusinessdesk.com")

	err := m.Handle(context.Background(), events.LeadSubmitted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		LeadRef:   "UBD-260209-3F2A9C",
		FullName:  "Jane Doe",
		Phone:     "+971501234567",
		Email:     "jane@example.com",
		SetupType: "freezone",
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	waitFor(t, d)

	got := sender.recipients()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "jane@example.com" || got[1] != "ops@uaebusinessdesk.com" {
		t.Fatalf("unexpected recipients: %v", got)
	}
}

func TestLeadSubmittedWithoutEmailOnlyAlertsAdmin(t *testing.T) {
	m, sender, d := newTestModule("ops@uaebusinessdesk.com")

	if err := m.Handle(context.Background(), events.LeadSubmitted{LeadRef: "UBD-260209-3F2A9C", FullName: "Jane Doe"}); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	waitFor(t, d)

	if got := sender.recipients(); len(got) != 1 || got[0] != "ops@uaebusinessdesk.com" {
		t.Fatalf("unexpected recipients: %v", got)
	}
}

func TestQuoteIssuedMailsDecisionLink(t *testing.T) {
	m, sender, d := newTestModule("")

	err := m.Handle(context.Background(), events.QuoteIssued{
		LeadRef:      "UBD-260209-3F2A9C",
		Track:        "company",
		FullName:     "Jane Doe",
		Email:        "jane@example.com",
		QuotedAmount: 12500,
		DecisionURL:  "https://uaebusinessdesk.com/quote/decision?token=abc",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	waitFor(t, d)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 1 || sender.sent[0].Kind != "quote_issued" {
		t.Fatalf("expected one quote email, got %+v", sender.sent)
	}
}

func TestQuoteIssuedWithoutEmailSendsNothing(t *testing.T) {
	m, sender, d := newTestModule("")

	if err := m.Handle(context.Background(), events.QuoteIssued{LeadRef: "UBD-260209-3F2A9C"}); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	waitFor(t, d)

	if got := sender.recipients(); len(got) != 0 {
		t.Fatalf("expected no deliveries, got %v", got)
	}
}

func TestDecisionRecordedConfirms(t *testing.T) {
	m, sender, d := newTestModule("ops@uaebusinessdesk.com")

	err := m.Handle(context.Background(), events.DecisionRecorded{
		LeadRef:   "UBD-260209-3F2A9C",
		Track:     "company",
		FullName:  "Jane Doe",
		Email:     "jane@example.com",
		Decision:  "proceed",
		DecidedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	waitFor(t, d)

	if got := sender.recipients(); len(got) != 2 {
		t.Fatalf("expected prospect confirmation and admin alert, got %v", got)
	}
}

func TestRegisterHandlersReceivesBusEvents(t *testing.T) {
	m, sender, d := newTestModule("ops@uaebusinessdesk.com")
	bus := events.NewInMemoryBus(nil)
	m.RegisterHandlers(bus)

	bus.Publish(context.Background(), events.LeadSubmitted{LeadRef: "UBD-260209-3F2A9C", FullName: "Jane Doe"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := bus.Wait(ctx); err != nil {
		t.Fatalf("bus did not settle: %v", err)
	}
	waitFor(t, d)

	if got := sender.recipients(); len(got) != 1 {
		t.Fatalf("expected admin alert via bus, got %v", got)
	}
}
