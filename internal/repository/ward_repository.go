package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/grievance-service/internal/domain"
)

// WardRepository reads administrative geography. Boundary polygons never
// leave the store; containment is answered by PostGIS.
type WardRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ward, error)
	List(ctx context.Context) ([]domain.Ward, error)
	// FindContaining resolves the ward whose boundary contains the point,
	// or pgx.ErrNoRows when no ward claims it.
	FindContaining(ctx context.Context, point domain.GeoPoint) (*domain.Ward, error)
	Count(ctx context.Context) (int64, error)
	// OfficerForWard returns the user id of the ward's resident officer, or
	// pgx.ErrNoRows when the ward is unstaffed.
	OfficerForWard(ctx context.Context, wardID string) (string, error)
}

type wardRepository struct {
	pool *pgxpool.Pool
}

// NewWardRepository builds repository.
func NewWardRepository(pool *pgxpool.Pool) WardRepository {
	return &wardRepository{pool: pool}
}

const wardColumns = `id, name, district_id, population, created_at`

func (r *wardRepository) GetByID(ctx context.Context, id string) (*domain.Ward, error) {
	query := `SELECT ` + wardColumns + ` FROM wards WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *wardRepository) List(ctx context.Context) ([]domain.Ward, error) {
	query := `SELECT ` + wardColumns + ` FROM wards ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ward
	for rows.Next() {
		var ward domain.Ward
		if err := rows.Scan(
			&ward.ID,
			&ward.Name,
			&ward.DistrictID,
			&ward.Population,
			&ward.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ward)
	}
	return result, rows.Err()
}

func (r *wardRepository) FindContaining(ctx context.Context, point domain.GeoPoint) (*domain.Ward, error) {
	query := `
        SELECT ` + wardColumns + `
        FROM wards
        WHERE ST_Contains(boundary, ST_SetSRID(ST_MakePoint($1, $2), 4326))
        LIMIT 1`
	return r.fetchSingle(ctx, query, point.Longitude, point.Latitude)
}

func (r *wardRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ward, error) {
	var ward domain.Ward
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ward.ID,
		&ward.Name,
		&ward.DistrictID,
		&ward.Population,
		&ward.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ward, nil
}

func (r *wardRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wards`).Scan(&count)
	return count, err
}

func (r *wardRepository) OfficerForWard(ctx context.Context, wardID string) (string, error) {
	const query = `
        SELECT p.user_id
        FROM officer_profiles p
        JOIN users u ON u.id = p.user_id AND u.is_active
        WHERE p.ward_id=$1
        ORDER BY p.created_at ASC
        LIMIT 1`
	var officerID string
	err := r.pool.QueryRow(ctx, query, wardID).Scan(&officerID)
	return officerID, err
}
