package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/grievance-service/internal/domain"
)

// EscalationRepository stores escalation events. A complaint escalates at
// most once, ever; the unique constraint on complaint_id is the source of
// truth for that rule.
type EscalationRepository interface {
	// Create inserts the escalation and reports whether a row was written.
	// A conflict on complaint_id means the complaint was already escalated
	// and is not an error.
	Create(ctx context.Context, escalation *domain.Escalation) (bool, error)
	ExistsForComplaint(ctx context.Context, complaintID string) (bool, error)
	ListRecent(ctx context.Context, limit, offset int) ([]domain.Escalation, error)
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository builds repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

func (r *escalationRepository) Create(ctx context.Context, escalation *domain.Escalation) (bool, error) {
	const query = `
        INSERT INTO escalations (complaint_id, escalated_from, escalated_to, reason)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (complaint_id) DO NOTHING
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		escalation.ComplaintID,
		escalation.EscalatedFrom,
		escalation.EscalatedTo,
		escalation.Reason,
	).Scan(&escalation.ID, &escalation.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *escalationRepository) ExistsForComplaint(ctx context.Context, complaintID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM escalations WHERE complaint_id=$1)`,
		complaintID).Scan(&exists)
	return exists, err
}

func (r *escalationRepository) ListRecent(ctx context.Context, limit, offset int) ([]domain.Escalation, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, complaint_id, escalated_from, escalated_to, reason, created_at
        FROM escalations ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Escalation
	for rows.Next() {
		var escalation domain.Escalation
		if err := rows.Scan(
			&escalation.ID,
			&escalation.ComplaintID,
			&escalation.EscalatedFrom,
			&escalation.EscalatedTo,
			&escalation.Reason,
			&escalation.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, escalation)
	}
	return result, rows.Err()
}
