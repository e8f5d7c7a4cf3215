package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	KindLeadAdmin     = "lead_admin"
	KindLeadAck       = "lead_ack"
	KindQuoteIssued   = "quote_issued"
	KindDecisionAck   = "decision_ack"
	KindDecisionAdmin = "decision_admin"
)

const (
	subjectLeadAdminFmt     = "New lead %s: %s"
	subjectLeadAckFmt       = "We received your request (%s)"
	subjectQuoteIssuedFmt   = "Your %s quote from UAE Business Desk (%s)"
	subjectDecisionAckFmt   = "Your decision on quote %s"
	subjectDecisionAdminFmt = "Lead %s chose %s on the %s quote"
)

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
	FooterRef  string
}

// LeadData describes a newly submitted lead.
type LeadData struct {
	LeadRef          string
	FullName         string
	Phone            string
	Email            string
	SetupType        string
	Emirate          string
	Activity         string
	NeedsBankAccount bool
	Notes            string
}

// QuoteData describes a quote with its decision link.
type QuoteData struct {
	LeadRef      string
	FullName     string
	Track        string
	QuotedAmount int64
	DecisionURL  string
	ExpiresAt    time.Time
}

// DecisionData describes a recorded prospect decision.
type DecisionData struct {
	LeadRef   string
	FullName  string
	Track     string
	Decision  string
	Reason    string
	DecidedAt time.Time
}

type leadEmailData struct {
	baseEmailData
	LeadData
}

type quoteEmailData struct {
	baseEmailData
	FullName   string
	TrackLabel string
	Amount     string
	ExpiresOn  string
}

type decisionEmailData struct {
	baseEmailData
	FullName   string
	TrackLabel string
	Decision   string
	Reason     string
	DecidedOn  string
}

// LeadAdminMessage renders the internal new-lead alert.
func LeadAdminMessage(to string, d LeadData) (Message, error) {
	html, err := renderEmailTemplate("lead_admin.html", leadEmailData{
		baseEmailData: baseEmailData{Title: "New lead", Heading: "New lead received", Subheading: d.FullName, FooterRef: d.LeadRef},
		LeadData:      d,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindLeadAdmin,
		To:      to,
		Subject: fmt.Sprintf(subjectLeadAdminFmt, d.LeadRef, d.FullName),
		HTML:    html,
	}, nil
}

// LeadAckMessage renders the acknowledgement sent to the prospect.
func LeadAckMessage(d LeadData) (Message, error) {
	html, err := renderEmailTemplate("lead_ack.html", leadEmailData{
		baseEmailData: baseEmailData{Title: "Request received", Heading: "We received your request", FooterRef: d.LeadRef},
		LeadData:      d,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindLeadAck,
		To:      d.Email,
		ToName:  d.FullName,
		Subject: fmt.Sprintf(subjectLeadAckFmt, d.LeadRef),
		HTML:    html,
	}, nil
}

// QuoteMessage renders the quote email carrying the decision link.
func QuoteMessage(to string, d QuoteData) (Message, error) {
	label := trackLabel(d.Track)
	html, err := renderEmailTemplate("quote_issued.html", quoteEmailData{
		baseEmailData: baseEmailData{
			Title:     "Your quote",
			Heading:   "Your quote is ready",
			CTALabel:  "Review and decide",
			CTAURL:    d.DecisionURL,
			FooterRef: d.LeadRef,
		},
		FullName:   d.FullName,
		TrackLabel: label,
		Amount:     FormatAED(d.QuotedAmount),
		ExpiresOn:  d.ExpiresAt.UTC().Format("2 January 2006"),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindQuoteIssued,
		To:      to,
		ToName:  d.FullName,
		Subject: fmt.Sprintf(subjectQuoteIssuedFmt, label, d.LeadRef),
		HTML:    html,
		Text:    fmt.Sprintf("Your %s quote is %s. Decide here: %s", label, FormatAED(d.QuotedAmount), d.DecisionURL),
	}, nil
}

// DecisionAckMessage renders the confirmation sent to the prospect.
func DecisionAckMessage(to string, d DecisionData) (Message, error) {
	html, err := renderEmailTemplate("decision_ack.html", decisionData(d, "Thank you", "We received your decision"))
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindDecisionAck,
		To:      to,
		ToName:  d.FullName,
		Subject: fmt.Sprintf(subjectDecisionAckFmt, d.LeadRef),
		HTML:    html,
	}, nil
}

// DecisionAdminMessage renders the internal alert for a prospect decision.
func DecisionAdminMessage(to string, d DecisionData) (Message, error) {
	html, err := renderEmailTemplate("decision_admin.html", decisionData(d, "Quote decision", "A prospect decided on a quote"))
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindDecisionAdmin,
		To:      to,
		Subject: fmt.Sprintf(subjectDecisionAdminFmt, d.LeadRef, d.Decision, trackLabel(d.Track)),
		HTML:    html,
	}, nil
}

func decisionData(d DecisionData, title, heading string) decisionEmailData {
	return decisionEmailData{
		baseEmailData: baseEmailData{Title: title, Heading: heading, FooterRef: d.LeadRef},
		FullName:      d.FullName,
		TrackLabel:    trackLabel(d.Track),
		Decision:      d.Decision,
		Reason:        d.Reason,
		DecidedOn:     d.DecidedAt.UTC().Format("2 Jan 2006 15:04 MST"),
	}
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func trackLabel(track string) string {
	if track == "bank" {
		return "bank account"
	}
	return "company setup"
}

// FormatAED renders a whole-dirham amount with thousands separators.
func FormatAED(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return "AED " + sign + string(out)
}
