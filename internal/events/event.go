// Package events defines what the leads and decisions modules announce and the
// notification module reacts to. Delivery lives in platform/events.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/events"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadSubmitted is published after the public form created a lead.
type LeadSubmitted struct {
	BaseEvent
	LeadID           uuid.UUID `json:"leadId"`
	LeadRef          string    `json:"leadRef"`
	FullName         string    `json:"fullName"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	SetupType        string    `json:"setupType"`
	Emirate          string    `json:"emirate,omitempty"`
	Activity         string    `json:"activity,omitempty"`
	NeedsBankAccount bool      `json:"needsBankAccount"`
	Notes            string    `json:"notes,omitempty"`
}

func (e LeadSubmitted) EventName() string { return "leads.lead.submitted" }

// StageChanged is published after an administrative transition on a track.
type StageChanged struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Track  string    `json:"track"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Actor  string    `json:"actor"`
}

func (e StageChanged) EventName() string { return "leads.stage.changed" }

// =============================================================================
// Decisions Domain Events
// =============================================================================

// QuoteIssued is published when a quote was sent and a decision link minted.
type QuoteIssued struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	LeadRef      string    `json:"leadRef"`
	Track        string    `json:"track"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email,omitempty"`
	QuotedAmount int64     `json:"quotedAmount"`
	DecisionURL  string    `json:"decisionUrl"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (e QuoteIssued) EventName() string { return "decisions.quote.issued" }

// DecisionRecorded is published when a prospect decision was stored for the first time.
type DecisionRecorded struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	LeadRef   string    `json:"leadRef"`
	Track     string    `json:"track"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email,omitempty"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

func (e DecisionRecorded) EventName() string { return "decisions.decision.recorded" }
