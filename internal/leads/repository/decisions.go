package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
)

// RecordDecision stores a prospect decision on a track only while no decision
// is recorded and the stage is still expected. It reports whether this call
// wrote the row; false means another writer got there first.
func (r *Repository) RecordDecision(ctx context.Context, leadID uuid.UUID, track domain.Track, expected domain.Stage, decision domain.Decision, reason *string, at time.Time) (bool, error) {
	if _, err := trackColumn(track, "stage"); err != nil {
		return false, err
	}

	var (
		set  string
		args = []any{leadID, string(expected), at}
	)
	switch decision {
	case domain.DecisionProceed:
		set = `%[1]s_proceeded_at = $3`
	case domain.DecisionDecline:
		set = `%[1]s_declined_at = $3, %[1]s_decline_reason = $4, %[1]s_stage = '` + string(domain.StageDeclined) + `'`
		args = append(args, reason)
	case domain.DecisionQuestions:
		set = `%[1]s_questions_at = $3, %[1]s_questions_text = $4`
		args = append(args, reason)
	default:
		return false, fmt.Errorf("unknown decision %q", decision)
	}

	query := fmt.Sprintf(`
		UPDATE leads SET `+set+`, updated_at = $3
		WHERE id = $1
			AND %[1]s_stage = $2
			AND %[1]s_proceeded_at IS NULL
			AND %[1]s_declined_at IS NULL
			AND %[1]s_questions_at IS NULL
	`, track)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("record decision: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
