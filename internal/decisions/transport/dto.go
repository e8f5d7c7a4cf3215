package transport

import "time"

// TokenRequest carries the decision token from the prospect's link.
type TokenRequest struct {
	Token string `json:"token" validate:"max=128"`
}

// DecideRequest records a prospect decision.
type DecideRequest struct {
	Token    string `json:"token" validate:"max=128"`
	Decision string `json:"decision" validate:"required,oneof=proceed decline questions"`
	Reason   string `json:"reason" validate:"max=2000"`
}

// DecisionDetailsResponse is what the prospect sees when opening the link.
type DecisionDetailsResponse struct {
	LeadRef      string     `json:"leadRef"`
	FullName     string     `json:"fullName"`
	Track        string     `json:"track"`
	Stage        string     `json:"stage"`
	QuotedAmount *int64     `json:"quotedAmount,omitempty"`
	QuoteSentAt  *time.Time `json:"quoteSentAt,omitempty"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	ViewedAt     *time.Time `json:"viewedAt,omitempty"`
	Decision     string     `json:"decision,omitempty"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty"`
}

// DecisionResult reports the decision in force after a decide call.
type DecisionResult struct {
	OK             bool      `json:"ok"`
	LeadRef        string    `json:"leadRef"`
	Track          string    `json:"track"`
	Decision       string    `json:"decision"`
	DecidedAt      time.Time `json:"decidedAt"`
	AlreadyDecided bool      `json:"alreadyDecided"`
}

// ViewResponse acknowledges a view.
type ViewResponse struct {
	OK       bool      `json:"ok"`
	ViewedAt time.Time `json:"viewedAt"`
}
