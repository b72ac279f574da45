package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/grievance-service/internal/domain"
)

// AssignmentRepository tracks complaint ownership by officers.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	GetActiveByComplaint(ctx context.Context, complaintID string) (*domain.Assignment, error)
	Deactivate(ctx context.Context, complaintID string) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.Assignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository builds repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (complaint_id, officer_id, is_active)
        VALUES ($1, $2, TRUE)
        RETURNING id, assigned_at`
	return r.pool.QueryRow(ctx, query,
		assignment.ComplaintID,
		assignment.OfficerID,
	).Scan(&assignment.ID, &assignment.AssignedAt)
}

func (r *assignmentRepository) GetActiveByComplaint(ctx context.Context, complaintID string) (*domain.Assignment, error) {
	const query = `
        SELECT id, complaint_id, officer_id, is_active, assigned_at
        FROM assignments WHERE complaint_id=$1 AND is_active`
	var assignment domain.Assignment
	if err := r.pool.QueryRow(ctx, query, complaintID).Scan(
		&assignment.ID,
		&assignment.ComplaintID,
		&assignment.OfficerID,
		&assignment.IsActive,
		&assignment.AssignedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Deactivate retires the current active assignment, keeping the row as
// history. Callers create the replacement afterwards.
func (r *assignmentRepository) Deactivate(ctx context.Context, complaintID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignments SET is_active=FALSE WHERE complaint_id=$1 AND is_active`,
		complaintID)
	return err
}

func (r *assignmentRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Assignment, error) {
	const query = `
        SELECT id, complaint_id, officer_id, is_active, assigned_at
        FROM assignments WHERE complaint_id=$1 ORDER BY assigned_at ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.ComplaintID,
			&assignment.OfficerID,
			&assignment.IsActive,
			&assignment.AssignedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
