package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborview-hms/harborview/internal/shared"
)

// Repository defines persistence operations for the staff directory.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Principal, error)
	ListPrincipals(ctx context.Context) ([]Principal, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByID fetches a directory entry by principal id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Principal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, username, role_id, department_id, is_active, created_at, updated_at FROM users WHERE id = $1`, id)
	var p Principal
	if err := row.Scan(&p.ID, &p.Username, &p.RoleID, &p.DepartmentID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrPrincipalNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPrincipals returns all directory entries ordered by id.
func (r *PGRepository) ListPrincipals(ctx context.Context) ([]Principal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, role_id, department_id, is_active, created_at, updated_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var principals []Principal
	for rows.Next() {
		var p Principal
		if err := rows.Scan(&p.ID, &p.Username, &p.RoleID, &p.DepartmentID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return principals, nil
}

var _ Repository = (*PGRepository)(nil)
