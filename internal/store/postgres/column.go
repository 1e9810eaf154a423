package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/kanban/internal/domain"
)

// ColumnRepo scopes every statement to boards owned by the acting user.
type ColumnRepo struct {
	pool *pgxpool.Pool
}

func NewColumnRepo(pool *pgxpool.Pool) *ColumnRepo {
	return &ColumnRepo{pool: pool}
}

func (r *ColumnRepo) Create(ctx context.Context, userID uuid.UUID, c *domain.Column) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO columns (id, title, board_id, position, created_at, updated_at)
		 SELECT $1::uuid, $2::text, b.id, $4::integer, $5::timestamptz, $6::timestamptz
		 FROM boards b WHERE b.id = $3 AND b.user_id = $7`,
		c.ID, c.Title, c.BoardID, c.Position, c.CreatedAt, c.UpdatedAt, userID,
	)
	if err != nil {
		return wrapErr("columnRepo.Create", err)
	}

	return notFoundIfNone("columnRepo.Create", tag)
}

func (r *ColumnRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Column, error) {
	var c domain.Column

	err := r.pool.QueryRow(ctx,
		`SELECT c.id, c.title, c.board_id, c.position, c.created_at, c.updated_at
		 FROM columns c JOIN boards b ON b.id = c.board_id
		 WHERE b.user_id = $1 AND c.id = $2`,
		userID, id,
	).Scan(&c.ID, &c.Title, &c.BoardID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapErr("columnRepo.GetByID", err)
	}

	return &c, nil
}

// ListByBoard returns the board's columns by position. Duplicate positions
// are ordered by creation time.
func (r *ColumnRepo) ListByBoard(ctx context.Context, userID, boardID uuid.UUID) ([]*domain.Column, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.title, c.board_id, c.position, c.created_at, c.updated_at
		 FROM columns c JOIN boards b ON b.id = c.board_id
		 WHERE b.user_id = $1 AND c.board_id = $2
		 ORDER BY c.position, c.created_at, c.id`,
		userID, boardID,
	)
	if err != nil {
		return nil, wrapErr("columnRepo.ListByBoard", err)
	}
	defer rows.Close()

	return scanColumns(rows, "columnRepo.ListByBoard")
}

func (r *ColumnRepo) Update(ctx context.Context, userID uuid.UUID, c *domain.Column) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE columns c SET title = $1, updated_at = now()
		 FROM boards b
		 WHERE b.id = c.board_id AND b.user_id = $2 AND c.id = $3
		 RETURNING c.updated_at`,
		c.Title, userID, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return wrapErr("columnRepo.Update", err)
	}

	return nil
}

func (r *ColumnRepo) UpdatePosition(ctx context.Context, userID, id uuid.UUID, position int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE columns c SET position = $1, updated_at = now()
		 FROM boards b
		 WHERE b.id = c.board_id AND b.user_id = $2 AND c.id = $3`,
		position, userID, id,
	)
	if err != nil {
		return wrapErr("columnRepo.UpdatePosition", err)
	}

	return notFoundIfNone("columnRepo.UpdatePosition", tag)
}

func (r *ColumnRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM columns c USING boards b
		 WHERE b.id = c.board_id AND b.user_id = $1 AND c.id = $2`,
		userID, id,
	)
	if err != nil {
		return wrapErr("columnRepo.Delete", err)
	}

	return notFoundIfNone("columnRepo.Delete", tag)
}

func scanColumns(rows pgx.Rows, caller string) ([]*domain.Column, error) {
	columns := []*domain.Column{}
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.ID, &c.Title, &c.BoardID, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		columns = append(columns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return columns, nil
}
