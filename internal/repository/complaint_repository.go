package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/grievance-service/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	CitizenID     *string
	WardID        *string
	Statuses      []domain.ComplaintStatus
	Urgencies     []domain.UrgencyLevel
	SearchTerm    *string
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// StalledComplaint is a sweep candidate: a complaint still open whose active
// assignment has aged past the stall threshold and that was never escalated.
type StalledComplaint struct {
	ComplaintID string
	OfficerID   string
	AssignedAt  time.Time
}

// WardComplaintCount aggregates complaint volume per ward.
type WardComplaintCount struct {
	WardID   string
	WardName string
	Count    int64
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, description string, changedAt time.Time) error
	UpdateDetails(ctx context.Context, id, title, description string, urgency domain.UrgencyLevel) error
	Delete(ctx context.Context, id string) error
	SetGeoPoint(ctx context.Context, id string, point domain.GeoPoint) error
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error)
	WardCounts(ctx context.Context) ([]WardComplaintCount, error)
	ListStalled(ctx context.Context, cutoff time.Time) ([]StalledComplaint, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `
        id, reference_key, title, description, category_id, urgency, status,
        ward_id, citizen_id, anonymous, address,
        ST_Y(geo_point), ST_X(geo_point), created_at, last_status_changed_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (reference_key, title, description, category_id, urgency, status, ward_id, citizen_id, anonymous, address)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, last_status_changed_at`
	return r.pool.QueryRow(ctx, query,
		complaint.ReferenceKey,
		complaint.Title,
		complaint.Description,
		complaint.CategoryID,
		complaint.Urgency,
		complaint.Status,
		complaint.WardID,
		complaint.CitizenID,
		complaint.Anonymous,
		complaint.Address,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.LastStatusChangedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints WHERE id=$1`
	var complaint domain.Complaint
	var lat, lng *float64
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&complaint.ID,
		&complaint.ReferenceKey,
		&complaint.Title,
		&complaint.Description,
		&complaint.CategoryID,
		&complaint.Urgency,
		&complaint.Status,
		&complaint.WardID,
		&complaint.CitizenID,
		&complaint.Anonymous,
		&complaint.Address,
		&lat,
		&lng,
		&complaint.CreatedAt,
		&complaint.LastStatusChangedAt,
	); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		complaint.GeoPoint = &domain.GeoPoint{Latitude: *lat, Longitude: *lng}
	}
	return &complaint, nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT` + complaintColumns + ` FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CitizenID != nil {
		args = append(args, *filter.CitizenID)
		clauses = append(clauses, fmt.Sprintf("citizen_id=$%d", len(args)))
	}
	if filter.WardID != nil {
		args = append(args, *filter.WardID)
		clauses = append(clauses, fmt.Sprintf("ward_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Urgencies) > 0 {
		placeholders := make([]string, len(filter.Urgencies))
		for i, urgency := range filter.Urgencies {
			args = append(args, urgency)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("urgency IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

// UpdateStatus sets status, description and the status-change timestamp in a
// single statement so they can never drift apart.
func (r *complaintRepository) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, description string, changedAt time.Time) error {
	const query = `
        UPDATE complaints SET status=$1, description=$2, last_status_changed_at=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, status, description, changedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) UpdateDetails(ctx context.Context, id, title, description string, urgency domain.UrgencyLevel) error {
	const query = `
        UPDATE complaints SET title=$1, description=$2, urgency=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, title, description, urgency, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) SetGeoPoint(ctx context.Context, id string, point domain.GeoPoint) error {
	const query = `
        UPDATE complaints
        SET geo_point = ST_SetSRID(ST_MakePoint($1, $2), 4326)
        WHERE id=$3`
	_, err := r.pool.Exec(ctx, query, point.Longitude, point.Latitude, id)
	return err
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int64)
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *complaintRepository) WardCounts(ctx context.Context) ([]WardComplaintCount, error) {
	const query = `
        SELECT w.id, w.name, COUNT(c.id)
        FROM wards w
        LEFT JOIN complaints c ON c.ward_id = w.id
        GROUP BY w.id, w.name
        ORDER BY COUNT(c.id) DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WardComplaintCount
	for rows.Next() {
		var wc WardComplaintCount
		if err := rows.Scan(&wc.WardID, &wc.WardName, &wc.Count); err != nil {
			return nil, err
		}
		result = append(result, wc)
	}
	return result, rows.Err()
}

// ListStalled returns open complaints whose active assignment predates the
// cutoff and that carry no escalation row.
func (r *complaintRepository) ListStalled(ctx context.Context, cutoff time.Time) ([]StalledComplaint, error) {
	const query = `
        SELECT c.id, a.officer_id, a.assigned_at
        FROM complaints c
        JOIN assignments a ON a.complaint_id = c.id AND a.is_active
        WHERE c.status IN ('PENDING','IN_PROGRESS')
          AND a.assigned_at < $1
          AND NOT EXISTS (SELECT 1 FROM escalations e WHERE e.complaint_id = c.id)
        ORDER BY a.assigned_at ASC`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StalledComplaint
	for rows.Next() {
		var sc StalledComplaint
		if err := rows.Scan(&sc.ComplaintID, &sc.OfficerID, &sc.AssignedAt); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		var lat, lng *float64
		if err := rows.Scan(
			&complaint.ID,
			&complaint.ReferenceKey,
			&complaint.Title,
			&complaint.Description,
			&complaint.CategoryID,
			&complaint.Urgency,
			&complaint.Status,
			&complaint.WardID,
			&complaint.CitizenID,
			&complaint.Anonymous,
			&complaint.Address,
			&lat,
			&lng,
			&complaint.CreatedAt,
			&complaint.LastStatusChangedAt,
		); err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			complaint.GeoPoint = &domain.GeoPoint{Latitude: *lat, Longitude: *lng}
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
