package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/grievance-service/internal/domain"
)

// UserRepository defines persistence access for accounts of every role.
// Officer reads join in the ward placement from officer_profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	CreateOfficer(ctx context.Context, user *domain.User, wardID, designation string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	FirstByRole(ctx context.Context, role domain.Role) (*domain.User, error)
	ListOfficers(ctx context.Context) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
        u.id, u.full_name, u.email, u.password_hash, u.role, u.is_active,
        p.ward_id, p.designation, u.created_at, u.updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (full_name, email, password_hash, role, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) CreateOfficer(ctx context.Context, user *domain.User, wardID, designation string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const userQuery = `
        INSERT INTO users (full_name, email, password_hash, role, is_active)
        VALUES ($1, $2, $3, $4, TRUE)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, userQuery,
		user.FullName,
		user.Email,
		user.PasswordHash,
		domain.RoleOfficer,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	const profileQuery = `
        INSERT INTO officer_profiles (user_id, ward_id, designation)
        VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, profileQuery, user.ID, wardID, designation); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	user.Role = domain.RoleOfficer
	user.IsActive = true
	user.WardID = &wardID
	user.Designation = &designation
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
        SELECT` + userColumns + `
        FROM users u
        LEFT JOIN officer_profiles p ON p.user_id = u.id
        WHERE u.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT` + userColumns + `
        FROM users u
        LEFT JOIN officer_profiles p ON p.user_id = u.id
        WHERE u.email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) FirstByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	query := `
        SELECT` + userColumns + `
        FROM users u
        LEFT JOIN officer_profiles p ON p.user_id = u.id
        WHERE u.role=$1
        ORDER BY u.created_at ASC
        LIMIT 1`
	return r.fetchSingle(ctx, query, role)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.WardID,
		&user.Designation,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListOfficers(ctx context.Context) ([]domain.User, error) {
	query := `
        SELECT` + userColumns + `
        FROM users u
        JOIN officer_profiles p ON p.user_id = u.id
        WHERE u.role=$1
        ORDER BY u.created_at DESC`
	rows, err := r.pool.Query(ctx, query, domain.RoleOfficer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.FullName,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.IsActive,
			&user.WardID,
			&user.Designation,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role=$1`, role).Scan(&count)
	return count, err
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
