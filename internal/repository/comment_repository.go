package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lead-service/internal/domain"
)

// CommentFilter captures comment listing parameters.
type CommentFilter struct {
	CompanyID *string
	AuthorID  *string
	LeadID    *string
	Limit     int
	Offset    int
}

// CommentRepository encapsulates comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListWithFilter(ctx context.Context, filter CommentFilter) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (comment_text, status, company_id, lead_id, created_by_user_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.Text,
		comment.Status,
		comment.CompanyID,
		comment.LeadID,
		comment.AuthorID,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	// company, lead and author bindings never change.
	const query = `
        UPDATE comments SET comment_text=$1, status=$2, updated_at=NOW()
        WHERE id=$3 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		comment.Text,
		comment.Status,
		comment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
        UPDATE comments SET is_deleted=TRUE, updated_at=NOW()
        WHERE id=$1 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	const query = `
        SELECT id, comment_text, status, company_id, lead_id, created_by_user_id, is_deleted, created_at, updated_at
        FROM comments WHERE id=$1 AND is_deleted=FALSE`
	var comment domain.Comment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.Text,
		&comment.Status,
		&comment.CompanyID,
		&comment.LeadID,
		&comment.AuthorID,
		&comment.IsDeleted,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListWithFilter joins author and lead names for display. A comment on
// a later-deleted lead stays listed and reads "Deleted Lead".
func (r *commentRepository) ListWithFilter(ctx context.Context, filter CommentFilter) ([]domain.Comment, error) {
	base := `SELECT c.id, c.comment_text, c.status, c.company_id, c.lead_id, c.created_by_user_id,
                    c.is_deleted, c.created_at, c.updated_at,
                    COALESCE(p.name, 'Unknown'), COALESCE(l.lead_name, 'Deleted Lead')
             FROM comments c
             LEFT JOIN profiles p ON p.id = c.created_by_user_id AND p.is_deleted = FALSE
             LEFT JOIN leads l ON l.id = c.lead_id AND l.is_deleted = FALSE`
	clauses := []string{"c.is_deleted=FALSE"}
	args := []any{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("c.company_id=$%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("c.created_by_user_id=$%d", len(args)))
	}
	if filter.LeadID != nil {
		args = append(args, *filter.LeadID)
		clauses = append(clauses, fmt.Sprintf("c.lead_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), normalizeLimit(filter.Limit), normalizeOffset(filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.Text,
			&comment.Status,
			&comment.CompanyID,
			&comment.LeadID,
			&comment.AuthorID,
			&comment.IsDeleted,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&comment.AuthorName,
			&comment.LeadName,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
