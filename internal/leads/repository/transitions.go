package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
)

// TransitionUpdate moves one track from From to To and sets the milestone
// fields that accompany the move. Nil fields keep their stored value.
type TransitionUpdate struct {
	LeadID            uuid.UUID
	Track             domain.Track
	From              domain.Stage
	To                domain.Stage
	Feasible          *bool
	QuotedAmount      *int64
	QuoteSentAt       *time.Time
	InvoiceNumber     *string
	InvoiceLink       *string
	InvoiceSentAt     *time.Time
	PaymentReceivedAt *time.Time
	CompletedAt       *time.Time
	At                time.Time
}

// ApplyTransition performs a compare-and-set on the track's stage column.
// ErrConflict means the stored stage was no longer From.
func (r *Repository) ApplyTransition(ctx context.Context, u TransitionUpdate) error {
	if _, err := trackColumn(u.Track, "stage"); err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE leads SET
			%[1]s_stage = $3,
			%[1]s_feasible = COALESCE($4, %[1]s_feasible),
			%[1]s_quoted_amount = COALESCE($5, %[1]s_quoted_amount),
			%[1]s_quote_sent_at = COALESCE($6, %[1]s_quote_sent_at),
			%[1]s_invoice_number = COALESCE($7, %[1]s_invoice_number),
			%[1]s_invoice_link = COALESCE($8, %[1]s_invoice_link),
			%[1]s_invoice_sent_at = COALESCE($9, %[1]s_invoice_sent_at),
			%[1]s_payment_received_at = COALESCE($10, %[1]s_payment_received_at),
			%[1]s_completed_at = COALESCE($11, %[1]s_completed_at),
			updated_at = $12
		WHERE id = $1 AND %[1]s_stage = $2
	`, u.Track)

	tag, err := r.pool.Exec(ctx, query,
		u.LeadID, string(u.From), string(u.To),
		u.Feasible, u.QuotedAmount, u.QuoteSentAt, u.InvoiceNumber, u.InvoiceLink,
		u.InvoiceSentAt, u.PaymentReceivedAt, u.CompletedAt, u.At,
	)
	if err != nil {
		return fmt.Errorf("apply transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// RevertQuote undoes a send_quote whose decision link could not be issued.
// The track returns to from with its quote fields cleared, provided it is
// still quoted. ErrConflict means the track has moved on since.
func (r *Repository) RevertQuote(ctx context.Context, leadID uuid.UUID, track domain.Track, from domain.Stage, at time.Time) error {
	if _, err := trackColumn(track, "stage"); err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE leads SET
			%[1]s_stage = $2,
			%[1]s_feasible = NULL,
			%[1]s_quoted_amount = NULL,
			%[1]s_quote_sent_at = NULL,
			updated_at = $4
		WHERE id = $1 AND %[1]s_stage = $3
	`, track)

	tag, err := r.pool.Exec(ctx, query, leadID, string(from), string(domain.StageQuoted), at)
	if err != nil {
		return fmt.Errorf("revert quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}
