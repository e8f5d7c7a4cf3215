package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultAssignee is the owner of a freshly created track.
const DefaultAssignee = "unassigned"

// SetupType is the service intent chosen on the intake form.
type SetupType string

const (
	SetupMainland SetupType = "mainland"
	SetupFreezone SetupType = "freezone"
	SetupOffshore SetupType = "offshore"
	SetupBank     SetupType = "bank"
	SetupNotSure  SetupType = "not_sure"
)

var setupAliases = map[string]SetupType{
	"mainland":     SetupMainland,
	"freezone":     SetupFreezone,
	"free_zone":    SetupFreezone,
	"offshore":     SetupOffshore,
	"bank":         SetupBank,
	"bank_account": SetupBank,
	"banking":      SetupBank,
	"not_sure":     SetupNotSure,
	"unsure":       SetupNotSure,
}

// ParseSetupType accepts the form's service labels case-insensitively,
// treating spaces and hyphens as underscores.
func ParseSetupType(s string) (SetupType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if st, ok := setupAliases[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown setup type %q", s)
}

// NeedsBankAccount is fixed at creation time.
func (s SetupType) NeedsBankAccount() bool {
	return s == SetupBank
}

// Decision is a prospect's answer to a quote.
type Decision string

const (
	DecisionProceed   Decision = "proceed"
	DecisionDecline   Decision = "decline"
	DecisionQuestions Decision = "questions"
)

// ParseDecision validates a decision name.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionProceed, DecisionDecline, DecisionQuestions:
		return Decision(s), nil
	}
	return "", fmt.Errorf("unknown decision %q", s)
}

// TrackState holds the stage and milestone fields of one track.
type TrackState struct {
	Stage             Stage
	Feasible          *bool
	AssignedTo        string
	QuotedAmount      *int64
	QuoteSentAt       *time.Time
	InvoiceNumber     *string
	InvoiceLink       *string
	InvoiceSentAt     *time.Time
	PaymentReceivedAt *time.Time
	ProceededAt       *time.Time
	DeclinedAt        *time.Time
	DeclineReason     *string
	QuestionsAt       *time.Time
	QuestionsText     *string
	CompletedAt       *time.Time
}

// RecordedDecision returns the decision already stored on the track, if any.
func (t TrackState) RecordedDecision() (Decision, time.Time, bool) {
	switch {
	case t.ProceededAt != nil:
		return DecisionProceed, *t.ProceededAt, true
	case t.DeclinedAt != nil:
		return DecisionDecline, *t.DeclinedAt, true
	case t.QuestionsAt != nil:
		return DecisionQuestions, *t.QuestionsAt, true
	}
	return "", time.Time{}, false
}

// NewTrackState returns the initial state of a track.
func NewTrackState(materialized bool) TrackState {
	stage := StageNew
	if !materialized {
		stage = StageNotApplicable
	}
	return TrackState{Stage: stage, AssignedTo: DefaultAssignee}
}

// Lead is a prospect's submitted request.
type Lead struct {
	ID               uuid.UUID
	Ref              string
	FullName         string
	Phone            string
	Email            *string
	Nationality      *string
	ResidenceCountry *string
	SetupType        SetupType
	Activity         *string
	Emirate          *string
	Shareholders     *int
	VisaRequirements *string
	NeedsBankAccount bool
	Company          TrackState
	Bank             TrackState
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StateOf returns the state of track.
func (l *Lead) StateOf(track Track) TrackState {
	if track == TrackBank {
		return l.Bank
	}
	return l.Company
}

// NewLeadRef builds the human-readable reference UBD-YYMMDD-XXXXXX.
func NewLeadRef(createdAt time.Time, id uuid.UUID) string {
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return fmt.Sprintf("UBD-%s-%s", createdAt.UTC().Format("060102"), hex[:6])
}

// AnnotationSource says who produced an annotation.
type AnnotationSource string

const (
	AnnotationProspect AnnotationSource = "prospect"
	AnnotationForm     AnnotationSource = "form"
	AnnotationSystem   AnnotationSource = "system"
)

// Annotation is one typed, append-only note on a lead.
type Annotation struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Source    AnnotationSource
	Field     string
	Value     string
	CreatedAt time.Time
}
