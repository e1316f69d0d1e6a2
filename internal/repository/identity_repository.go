package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lead-service/internal/domain"
)

// IdentityFilter captures profile listing parameters. Role is set by
// the caller to separate the admins and users views.
type IdentityFilter struct {
	Role       *domain.Role
	CompanyID  *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// IdentityRepository defines persistence access for profiles. Role and
// company binding are write-once: Update never touches them.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	Update(ctx context.Context, identity *domain.Identity) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	ListWithFilter(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error)
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO profiles (name, email, password_hash, phone, gender, address, role, company_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''))
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		identity.Name,
		identity.Email,
		identity.PasswordHash,
		identity.Phone,
		identity.Gender,
		identity.Address,
		identity.Role,
		identity.CompanyID,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
}

func (r *identityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	const query = `
        UPDATE profiles SET name=$1, email=$2, phone=$3, gender=$4, address=$5, updated_at=NOW()
        WHERE id=$6 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		identity.Name,
		identity.Email,
		identity.Phone,
		identity.Gender,
		identity.Address,
		identity.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE profiles SET password_hash=$1, updated_at=NOW()
        WHERE id=$2 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
        UPDATE profiles SET is_deleted=TRUE, updated_at=NOW()
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

const identityColumns = `id, name, email, password_hash, phone, gender, address, role, COALESCE(company_id::text, ''), is_deleted, created_at, updated_at`

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id=$1 AND is_deleted=FALSE`, identityColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email=$1 AND is_deleted=FALSE`, identityColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *identityRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Identity, error) {
	var identity domain.Identity
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Name,
		&identity.Email,
		&identity.PasswordHash,
		&identity.Phone,
		&identity.Gender,
		&identity.Address,
		&identity.Role,
		&identity.CompanyID,
		&identity.IsDeleted,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) ListWithFilter(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error) {
	base := fmt.Sprintf(`SELECT %s FROM profiles`, identityColumns)
	clauses := []string{"is_deleted=FALSE"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("company_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), normalizeLimit(filter.Limit), normalizeOffset(filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		if err := rows.Scan(
			&identity.ID,
			&identity.Name,
			&identity.Email,
			&identity.PasswordHash,
			&identity.Phone,
			&identity.Gender,
			&identity.Address,
			&identity.Role,
			&identity.CompanyID,
			&identity.IsDeleted,
			&identity.CreatedAt,
			&identity.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, identity)
	}
	return result, rows.Err()
}
