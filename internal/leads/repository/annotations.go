package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
)

// AddAnnotations appends annotations in one transaction.
func (r *Repository) AddAnnotations(ctx context.Context, annotations []domain.Annotation) error {
	if len(annotations) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin annotations: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, a := range annotations {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_annotations (id, lead_id, source, field, value, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.ID, a.LeadID, string(a.Source), a.Field, a.Value, a.CreatedAt); err != nil {
			return fmt.Errorf("insert annotation %s: %w", a.Field, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit annotations: %w", err)
	}
	return nil
}

// ListAnnotations returns a lead's annotations oldest first.
func (r *Repository) ListAnnotations(ctx context.Context, leadID uuid.UUID) ([]domain.Annotation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, source, field, value, created_at
		FROM lead_annotations
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Annotation, 0)
	for rows.Next() {
		var (
			item   domain.Annotation
			source string
		)
		if err := rows.Scan(&item.ID, &item.LeadID, &source, &item.Field, &item.Value, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Source = domain.AnnotationSource(source)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
