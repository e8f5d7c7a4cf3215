package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
)

var (
	ErrNotFound = errors.New("lead not found")
	// ErrConflict is returned when a conditional update matched no row because
	// the track moved on concurrently.
	ErrConflict = errors.New("lead changed concurrently")
)

// DBTX is the subset of pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	pool DBTX
}

func New(pool DBTX) *Repository {
	return &Repository{pool: pool}
}

var trackFields = []string{
	"stage", "feasible", "assigned_to", "quoted_amount", "quote_sent_at", "invoice_number", "invoice_link",
	"invoice_sent_at", "payment_received_at", "proceeded_at", "declined_at", "decline_reason", "questions_at",
	"questions_text", "completed_at",
}

func trackSelectList(track domain.Track) string {
	cols := make([]string, len(trackFields))
	for i, field := range trackFields {
		cols[i] = string(track) + "_" + field
	}
	return strings.Join(cols, ", ")
}

var selectLeadSQL = fmt.Sprintf(`
		SELECT id, lead_ref, full_name, phone, email, nationality, residence_country,
			setup_type, activity, emirate, shareholders, visa_requirements, needs_bank_account,
			%s,
			%s,
			created_at, updated_at
		FROM leads`, trackSelectList(domain.TrackCompany), trackSelectList(domain.TrackBank))

// Create inserts a new lead with both tracks in their initial state.
func (r *Repository) Create(ctx context.Context, lead domain.Lead) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (
			id, lead_ref, full_name, phone, email, nationality, residence_country,
			setup_type, activity, emirate, shareholders, visa_requirements, needs_bank_account,
			company_stage, company_assigned_to, bank_stage, bank_assigned_to,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)
	`,
		lead.ID, lead.Ref, lead.FullName, lead.Phone, lead.Email, lead.Nationality, lead.ResidenceCountry,
		string(lead.SetupType), lead.Activity, lead.Emirate, lead.Shareholders, lead.VisaRequirements, lead.NeedsBankAccount,
		string(lead.Company.Stage), lead.Company.AssignedTo, string(lead.Bank.Stage), lead.Bank.AssignedTo,
		lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// GetByID loads a lead with both tracks.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, selectLeadSQL+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// SetAssignee changes the owner of a track.
func (r *Repository) SetAssignee(ctx context.Context, id uuid.UUID, track domain.Track, assignee string) error {
	column, err := trackColumn(track, "assigned_to")
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE leads SET %s = $2, updated_at = $3 WHERE id = $1
	`, column), id, assignee, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set assignee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func trackColumn(track domain.Track, column string) (string, error) {
	switch track {
	case domain.TrackCompany, domain.TrackBank:
		return string(track) + "_" + column, nil
	}
	return "", fmt.Errorf("unknown track %q", track)
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead                    domain.Lead
		setupType               string
		companyStage, bankStage string
	)
	err := row.Scan(
		&lead.ID, &lead.Ref, &lead.FullName, &lead.Phone, &lead.Email, &lead.Nationality, &lead.ResidenceCountry,
		&setupType, &lead.Activity, &lead.Emirate, &lead.Shareholders, &lead.VisaRequirements, &lead.NeedsBankAccount,
		&companyStage, &lead.Company.Feasible, &lead.Company.AssignedTo, &lead.Company.QuotedAmount, &lead.Company.QuoteSentAt,
		&lead.Company.InvoiceNumber, &lead.Company.InvoiceLink, &lead.Company.InvoiceSentAt, &lead.Company.PaymentReceivedAt,
		&lead.Company.ProceededAt, &lead.Company.DeclinedAt, &lead.Company.DeclineReason, &lead.Company.QuestionsAt,
		&lead.Company.QuestionsText, &lead.Company.CompletedAt,
		&bankStage, &lead.Bank.Feasible, &lead.Bank.AssignedTo, &lead.Bank.QuotedAmount, &lead.Bank.QuoteSentAt,
		&lead.Bank.InvoiceNumber, &lead.Bank.InvoiceLink, &lead.Bank.InvoiceSentAt, &lead.Bank.PaymentReceivedAt,
		&lead.Bank.ProceededAt, &lead.Bank.DeclinedAt, &lead.Bank.DeclineReason, &lead.Bank.QuestionsAt,
		&lead.Bank.QuestionsText, &lead.Bank.CompletedAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.SetupType = domain.SetupType(setupType)
	lead.Company.Stage = domain.Stage(companyStage)
	lead.Bank.Stage = domain.Stage(bankStage)
	return lead, nil
}
