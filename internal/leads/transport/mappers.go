package transport

import "github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"

// ToLeadResponse maps a lead and its annotations to the admin view.
func ToLeadResponse(lead domain.Lead, annotations []domain.Annotation) LeadResponse {
	items := make([]AnnotationResponse, 0, len(annotations))
	for _, a := range annotations {
		items = append(items, AnnotationResponse{
			Source:    string(a.Source),
			Field:     a.Field,
			Value:     a.Value,
			CreatedAt: a.CreatedAt,
		})
	}

	return LeadResponse{
		ID:               lead.ID,
		LeadRef:          lead.Ref,
		FullName:         lead.FullName,
		Phone:            lead.Phone,
		Email:            lead.Email,
		Nationality:      lead.Nationality,
		ResidenceCountry: lead.ResidenceCountry,
		SetupType:        string(lead.SetupType),
		Activity:         lead.Activity,
		Emirate:          lead.Emirate,
		Shareholders:     lead.Shareholders,
		VisaRequirements: lead.VisaRequirements,
		NeedsBankAccount: lead.NeedsBankAccount,
		Company:          ToTrackResponse(lead.Company),
		Bank:             ToTrackResponse(lead.Bank),
		Annotations:      items,
		CreatedAt:        lead.CreatedAt,
		UpdatedAt:        lead.UpdatedAt,
	}
}

func ToTrackResponse(t domain.TrackState) TrackResponse {
	resp := TrackResponse{
		Stage:             string(t.Stage),
		Feasible:          t.Feasible,
		AssignedTo:        t.AssignedTo,
		QuotedAmount:      t.QuotedAmount,
		QuoteSentAt:       t.QuoteSentAt,
		InvoiceNumber:     t.InvoiceNumber,
		InvoiceLink:       t.InvoiceLink,
		InvoiceSentAt:     t.InvoiceSentAt,
		PaymentReceivedAt: t.PaymentReceivedAt,
		CompletedAt:       t.CompletedAt,
	}
	if decision, at, ok := t.RecordedDecision(); ok {
		resp.Decision = &DecisionResponse{Decision: string(decision), DecidedAt: at}
		switch decision {
		case domain.DecisionDecline:
			resp.Decision.Reason = t.DeclineReason
		case domain.DecisionQuestions:
			resp.Decision.Reason = t.QuestionsText
		}
	}
	return resp
}
