// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an event cannot move a track from its current stage.
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrTrackNotApplicable is returned for transitions on a bank track that was never materialized.
	ErrTrackNotApplicable = errors.New("track not applicable")
	// ErrUnknownEvent is returned for events outside the transition vocabulary.
	ErrUnknownEvent = errors.New("unknown transition event")
)

// Track identifies one of the two independent fulfillment paths of a lead.
type Track string

const (
	TrackCompany Track = "company"
	TrackBank    Track = "bank"
)

// ParseTrack validates a track name.
func ParseTrack(s string) (Track, error) {
	switch Track(s) {
	case TrackCompany, TrackBank:
		return Track(s), nil
	}
	return "", fmt.Errorf("unknown track %q", s)
}

// Stage is a named point in a track's progression.
type Stage string

const (
	StageNew               Stage = "new"
	StageAgentContacted    Stage = "agent_contacted"
	StageFeasibilityReview Stage = "feasibility_review"
	StageQuoted            Stage = "quoted"
	StageInvoiceSent       Stage = "invoice_sent"
	StageAwaitingPayment   Stage = "awaiting_payment"
	StagePaymentReceived   Stage = "payment_received"
	StageInProgress        Stage = "in_progress"
	StageCompleted         Stage = "completed"

	StageNotFeasible Stage = "not_feasible"
	StageDeclined    Stage = "declined"

	// StageNotApplicable is reported by a bank track the lead never asked for.
	StageNotApplicable Stage = "not_applicable"
)

// stageOrder is the position of each main-line stage.
var stageOrder = map[Stage]int{
	StageNew:               0,
	StageAgentContacted:    1,
	StageFeasibilityReview: 2,
	StageQuoted:            3,
	StageInvoiceSent:       4,
	StageAwaitingPayment:   5,
	StagePaymentReceived:   6,
	StageInProgress:        7,
	StageCompleted:         8,
}

var terminalStages = map[Stage]bool{
	StageCompleted:   true,
	StageNotFeasible: true,
	StageDeclined:    true,
}

var decisionStages = map[Stage]bool{
	StageQuoted:          true,
	StageInvoiceSent:     true,
	StageAwaitingPayment: true,
}

// IsKnown reports whether s belongs to the stage vocabulary.
func (s Stage) IsKnown() bool {
	if _, ok := stageOrder[s]; ok {
		return true
	}
	return terminalStages[s] || s == StageNotApplicable
}

// Index returns the main-line position, or -1 for side branches and not_applicable.
func (s Stage) Index() int {
	if idx, ok := stageOrder[s]; ok {
		return idx
	}
	return -1
}

// IsTerminal reports whether no further transitions are possible.
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// IsPrePayment reports whether s is a non-terminal stage before payment_received.
func (s Stage) IsPrePayment() bool {
	idx := s.Index()
	return idx >= 0 && idx < stageOrder[StagePaymentReceived]
}

// AcceptsDecision reports whether a prospect may decide on a quote in this stage.
func (s Stage) AcceptsDecision() bool {
	return decisionStages[s]
}

// Event is an external trigger that moves a track to a new stage.
type Event string

const (
	EventContactAgent           Event = "contact_agent"
	EventStartFeasibilityReview Event = "start_feasibility_review"
	EventSendQuote              Event = "send_quote"
	EventSendInvoice            Event = "send_invoice"
	EventAwaitPayment           Event = "await_payment"
	EventRecordPayment          Event = "record_payment"
	EventStartWork              Event = "start_work"
	EventComplete               Event = "complete"
	EventMarkNotFeasible        Event = "mark_not_feasible"
	EventDecline                Event = "decline"
)

var eventTargets = map[Event]Stage{
	EventContactAgent:           StageAgentContacted,
	EventStartFeasibilityReview: StageFeasibilityReview,
	EventSendQuote:              StageQuoted,
	EventSendInvoice:            StageInvoiceSent,
	EventAwaitPayment:           StageAwaitingPayment,
	EventRecordPayment:          StagePaymentReceived,
	EventStartWork:              StageInProgress,
	EventComplete:               StageCompleted,
	EventMarkNotFeasible:        StageNotFeasible,
	EventDecline:                StageDeclined,
}

// ParseEvent validates an event name.
func ParseEvent(s string) (Event, error) {
	if _, ok := eventTargets[Event(s)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, s)
	}
	return Event(s), nil
}

// NextStage returns the stage event moves current to. Legal moves go strictly
// forward along the main line, or sideways into not_feasible or declined from
// a pre-payment stage. The function is pure.
func NextStage(current Stage, event Event) (Stage, error) {
	target, ok := eventTargets[event]
	if !ok {
		return current, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if current == StageNotApplicable {
		return current, ErrTrackNotApplicable
	}
	if !current.IsKnown() || current.IsTerminal() {
		return current, fmt.Errorf("%w: %s is final", ErrInvalidTransition, current)
	}

	if target.IsTerminal() && target.Index() < 0 {
		if !current.IsPrePayment() {
			return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
		}
		return target, nil
	}

	if target.Index() <= current.Index() {
		return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}
	return target, nil
}
