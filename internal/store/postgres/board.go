package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/kanban/internal/domain"
)

type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO boards (id, title, description, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Title, b.Description, b.UserID, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return wrapErr("boardRepo.Create", err)
	}

	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Board, error) {
	var b domain.Board

	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, user_id, created_at, updated_at
		 FROM boards WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&b.ID, &b.Title, &b.Description, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, wrapErr("boardRepo.GetByID", err)
	}

	return &b, nil
}

// List returns the user's boards, newest first.
func (r *BoardRepo) List(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, user_id, created_at, updated_at
		 FROM boards WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT 1000`,
		userID,
	)
	if err != nil {
		return nil, wrapErr("boardRepo.List", err)
	}
	defer rows.Close()

	return scanBoards(rows, "boardRepo.List")
}

func (r *BoardRepo) Update(ctx context.Context, b *domain.Board) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE boards SET title = $1, description = $2, updated_at = now()
		 WHERE user_id = $3 AND id = $4
		 RETURNING updated_at`,
		b.Title, b.Description, b.UserID, b.ID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return wrapErr("boardRepo.Update", err)
	}

	return nil
}

// Delete removes the board; columns, cards, tags and card tags cascade.
func (r *BoardRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM boards WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return wrapErr("boardRepo.Delete", err)
	}

	return notFoundIfNone("boardRepo.Delete", tag)
}

func scanBoards(rows pgx.Rows, caller string) ([]*domain.Board, error) {
	boards := []*domain.Board{}
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.UserID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		boards = append(boards, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return boards, nil
}
