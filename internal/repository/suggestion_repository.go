package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/grievance-service/internal/domain"
)

// SuggestionFilter narrows suggestion listings.
type SuggestionFilter struct {
	WardID     *string
	IsReviewed *bool
	Limit      int
	Offset     int
}

// SuggestionRepository stores citizen improvement proposals.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) error
	GetByID(ctx context.Context, id string) (*domain.Suggestion, error)
	List(ctx context.Context, filter SuggestionFilter) ([]domain.Suggestion, error)
	Respond(ctx context.Context, id, response string) error
	Upvote(ctx context.Context, id string) error
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository builds repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

const suggestionColumns = `
        id, title, description, category, ward_id, citizen_id, upvotes,
        is_reviewed, admin_response, created_at`

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	const query = `
        INSERT INTO suggestions (title, description, category, ward_id, citizen_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, upvotes, is_reviewed, created_at`
	return r.pool.QueryRow(ctx, query,
		suggestion.Title,
		suggestion.Description,
		suggestion.Category,
		suggestion.WardID,
		suggestion.CitizenID,
	).Scan(&suggestion.ID, &suggestion.Upvotes, &suggestion.IsReviewed, &suggestion.CreatedAt)
}

func (r *suggestionRepository) GetByID(ctx context.Context, id string) (*domain.Suggestion, error) {
	query := `SELECT` + suggestionColumns + ` FROM suggestions WHERE id=$1`
	var suggestion domain.Suggestion
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&suggestion.ID,
		&suggestion.Title,
		&suggestion.Description,
		&suggestion.Category,
		&suggestion.WardID,
		&suggestion.CitizenID,
		&suggestion.Upvotes,
		&suggestion.IsReviewed,
		&suggestion.AdminResponse,
		&suggestion.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *suggestionRepository) List(ctx context.Context, filter SuggestionFilter) ([]domain.Suggestion, error) {
	base := `SELECT` + suggestionColumns + ` FROM suggestions`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.WardID != nil {
		args = append(args, *filter.WardID)
		clauses = append(clauses, fmt.Sprintf("ward_id=$%d", len(args)))
	}
	if filter.IsReviewed != nil {
		args = append(args, *filter.IsReviewed)
		clauses = append(clauses, fmt.Sprintf("is_reviewed=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
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

	var result []domain.Suggestion
	for rows.Next() {
		var suggestion domain.Suggestion
		if err := rows.Scan(
			&suggestion.ID,
			&suggestion.Title,
			&suggestion.Description,
			&suggestion.Category,
			&suggestion.WardID,
			&suggestion.CitizenID,
			&suggestion.Upvotes,
			&suggestion.IsReviewed,
			&suggestion.AdminResponse,
			&suggestion.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, suggestion)
	}
	return result, rows.Err()
}

func (r *suggestionRepository) Respond(ctx context.Context, id, response string) error {
	const query = `
        UPDATE suggestions SET admin_response=$1, is_reviewed=TRUE WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, response, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *suggestionRepository) Upvote(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE suggestions SET upvotes = upvotes + 1 WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
