package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateLeadRequest is the public intake form. Either ServiceRequired or
// HelpWith names the setup type; whatsapp is validated after normalization.
type CreateLeadRequest struct {
	FullName         string            `json:"fullName" validate:"required,min=1,max=120"`
	Whatsapp         string            `json:"whatsapp" validate:"required,max=32"`
	ServiceRequired  string            `json:"serviceRequired" validate:"omitempty,max=64"`
	HelpWith         string            `json:"helpWith" validate:"omitempty,max=64"`
	Email            string            `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Nationality      string            `json:"nationality,omitempty" validate:"omitempty,max=80"`
	ResidenceCountry string            `json:"residenceCountry,omitempty" validate:"omitempty,max=80"`
	Emirate          string            `json:"emirate,omitempty" validate:"omitempty,max=64"`
	Activity         string            `json:"activity,omitempty" validate:"omitempty,max=200"`
	Shareholders     *int              `json:"shareholders,omitempty" validate:"omitempty,min=0,max=100"`
	VisaRequirements string            `json:"visaRequirements,omitempty" validate:"omitempty,max=200"`
	Notes            string            `json:"notes,omitempty" validate:"omitempty,max=5000"`
	ServiceDetails   string            `json:"serviceDetails,omitempty" validate:"omitempty,max=5000"`
	AdditionalFields map[string]string `json:"additionalFields,omitempty" validate:"omitempty,max=20,dive,keys,required,max=64,endkeys,max=1000"`
}

// TransitionRequest drives one administrative stage change.
type TransitionRequest struct {
	Event         string `json:"event" validate:"required,max=64"`
	QuotedAmount  *int64 `json:"quotedAmount,omitempty" validate:"omitempty,min=0"`
	InvoiceNumber string `json:"invoiceNumber,omitempty" validate:"omitempty,max=64"`
	InvoiceLink   string `json:"invoiceLink,omitempty" validate:"omitempty,url,max=500"`
}

type AssigneeRequest struct {
	Assignee string `json:"assignee" validate:"required,min=1,max=120"`
}

// Response DTOs

type CreateLeadResponse struct {
	OK      bool      `json:"ok"`
	LeadID  uuid.UUID `json:"leadId"`
	LeadRef string    `json:"leadRef"`
}

type DecisionResponse struct {
	Decision  string    `json:"decision"`
	DecidedAt time.Time `json:"decidedAt"`
	Reason    *string   `json:"reason,omitempty"`
}

type TrackResponse struct {
	Stage             string            `json:"stage"`
	Feasible          *bool             `json:"feasible,omitempty"`
	AssignedTo        string            `json:"assignedTo"`
	QuotedAmount      *int64            `json:"quotedAmount,omitempty"`
	QuoteSentAt       *time.Time        `json:"quoteSentAt,omitempty"`
	InvoiceNumber     *string           `json:"invoiceNumber,omitempty"`
	InvoiceLink       *string           `json:"invoiceLink,omitempty"`
	InvoiceSentAt     *time.Time        `json:"invoiceSentAt,omitempty"`
	PaymentReceivedAt *time.Time        `json:"paymentReceivedAt,omitempty"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	Decision          *DecisionResponse `json:"decision,omitempty"`
}

type AnnotationResponse struct {
	Source    string    `json:"source"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

type LeadResponse struct {
	ID               uuid.UUID            `json:"id"`
	LeadRef          string               `json:"leadRef"`
	FullName         string               `json:"fullName"`
	Phone            string               `json:"phone"`
	Email            *string              `json:"email,omitempty"`
	Nationality      *string              `json:"nationality,omitempty"`
	ResidenceCountry *string              `json:"residenceCountry,omitempty"`
	SetupType        string               `json:"setupType"`
	Activity         *string              `json:"activity,omitempty"`
	Emirate          *string              `json:"emirate,omitempty"`
	Shareholders     *int                 `json:"shareholders,omitempty"`
	VisaRequirements *string              `json:"visaRequirements,omitempty"`
	NeedsBankAccount bool                 `json:"needsBankAccount"`
	Company          TrackResponse        `json:"company"`
	Bank             TrackResponse        `json:"bank"`
	Annotations      []AnnotationResponse `json:"annotations"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

type TransitionResponse struct {
	Lead         LeadResponse `json:"lead"`
	DecisionLink string       `json:"decisionLink,omitempty"`
}
