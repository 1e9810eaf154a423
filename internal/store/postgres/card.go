package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/kanban/internal/domain"
)

// ownedColumn matches column ids on boards owned by the user.
const ownedColumn = `SELECT oc.id FROM columns oc JOIN boards ob ON ob.id = oc.board_id WHERE ob.user_id = `

type CardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepo(pool *pgxpool.Pool) *CardRepo {
	return &CardRepo{pool: pool}
}

func (r *CardRepo) Create(ctx context.Context, userID uuid.UUID, c *domain.Card) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO cards (id, title, description, column_id, position, created_at, updated_at)
		 SELECT $1::uuid, $2::text, $3::text, $4::uuid, $5::integer, $6::timestamptz, $7::timestamptz
		 WHERE $4::uuid IN (`+ownedColumn+`$8)`,
		c.ID, c.Title, c.Description, c.ColumnID, c.Position, c.CreatedAt, c.UpdatedAt, userID,
	)
	if err != nil {
		return wrapErr("cardRepo.Create", err)
	}

	return notFoundIfNone("cardRepo.Create", tag)
}

func (r *CardRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Card, error) {
	var c domain.Card

	err := r.pool.QueryRow(ctx,
		`SELECT k.id, k.title, k.description, k.column_id, k.position, k.created_at, k.updated_at
		 FROM cards k
		 WHERE k.id = $2 AND k.column_id IN (`+ownedColumn+`$1)`,
		userID, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.ColumnID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapErr("cardRepo.GetByID", err)
	}

	return &c, nil
}

// ListByColumns returns the cards of the given columns ordered by position.
func (r *CardRepo) ListByColumns(ctx context.Context, userID uuid.UUID, columnIDs []uuid.UUID) ([]*domain.Card, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT k.id, k.title, k.description, k.column_id, k.position, k.created_at, k.updated_at
		 FROM cards k
		 WHERE k.column_id = ANY($2::uuid[]) AND k.column_id IN (`+ownedColumn+`$1)
		 ORDER BY k.position, k.created_at, k.id`,
		userID, uuidStrings(columnIDs),
	)
	if err != nil {
		return nil, wrapErr("cardRepo.ListByColumns", err)
	}
	defer rows.Close()

	return scanCards(rows, "cardRepo.ListByColumns")
}

func (r *CardRepo) Update(ctx context.Context, userID uuid.UUID, c *domain.Card) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE cards SET title = $1, description = $2, updated_at = now()
		 WHERE id = $3 AND column_id IN (`+ownedColumn+`$4)
		 RETURNING updated_at`,
		c.Title, c.Description, c.ID, userID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return wrapErr("cardRepo.Update", err)
	}

	return nil
}

// Move places the card at position in columnID. Both the card's current
// column and the target column must be on boards owned by the user.
func (r *CardRepo) Move(ctx context.Context, userID, id, columnID uuid.UUID, position int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cards SET column_id = $1, position = $2, updated_at = now()
		 WHERE id = $3
		   AND column_id IN (`+ownedColumn+`$4)
		   AND $1 IN (`+ownedColumn+`$4)`,
		columnID, position, id, userID,
	)
	if err != nil {
		return wrapErr("cardRepo.Move", err)
	}

	return notFoundIfNone("cardRepo.Move", tag)
}

func (r *CardRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cards WHERE id = $2 AND column_id IN (`+ownedColumn+`$1)`,
		userID, id,
	)
	if err != nil {
		return wrapErr("cardRepo.Delete", err)
	}

	return notFoundIfNone("cardRepo.Delete", tag)
}

func scanCards(rows pgx.Rows, caller string) ([]*domain.Card, error) {
	cards := []*domain.Card{}
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.ColumnID, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		cards = append(cards, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return cards, nil
}
