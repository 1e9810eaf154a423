package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/kanban/internal/domain"
)

type TagRepo struct {
	pool *pgxpool.Pool
}

func NewTagRepo(pool *pgxpool.Pool) *TagRepo {
	return &TagRepo{pool: pool}
}

func (r *TagRepo) Create(ctx context.Context, userID uuid.UUID, t *domain.Tag) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO tags (id, name, color, board_id, created_at)
		 SELECT $1::uuid, $2::text, $3::text, b.id, $5::timestamptz
		 FROM boards b WHERE b.id = $4 AND b.user_id = $6`,
		t.ID, t.Name, t.Color, t.BoardID, t.CreatedAt, userID,
	)
	if err != nil {
		return wrapErr("tagRepo.Create", err)
	}

	return notFoundIfNone("tagRepo.Create", tag)
}

func (r *TagRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Tag, error) {
	var t domain.Tag

	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.name, t.color, t.board_id, t.created_at
		 FROM tags t JOIN boards b ON b.id = t.board_id
		 WHERE b.user_id = $1 AND t.id = $2`,
		userID, id,
	).Scan(&t.ID, &t.Name, &t.Color, &t.BoardID, &t.CreatedAt)
	if err != nil {
		return nil, wrapErr("tagRepo.GetByID", err)
	}

	return &t, nil
}

func (r *TagRepo) ListByBoard(ctx context.Context, userID, boardID uuid.UUID) ([]*domain.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.name, t.color, t.board_id, t.created_at
		 FROM tags t JOIN boards b ON b.id = t.board_id
		 WHERE b.user_id = $1 AND t.board_id = $2
		 ORDER BY t.created_at, t.id`,
		userID, boardID,
	)
	if err != nil {
		return nil, wrapErr("tagRepo.ListByBoard", err)
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.BoardID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("tagRepo.ListByBoard: scan: %w", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tagRepo.ListByBoard: rows: %w", err)
	}

	return tags, nil
}

func (r *TagRepo) Update(ctx context.Context, userID uuid.UUID, t *domain.Tag) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tags t SET name = $1, color = $2
		 FROM boards b
		 WHERE b.id = t.board_id AND b.user_id = $3 AND t.id = $4`,
		t.Name, t.Color, userID, t.ID,
	)
	if err != nil {
		return wrapErr("tagRepo.Update", err)
	}

	return notFoundIfNone("tagRepo.Update", tag)
}

// Delete removes the tag; its card assignments cascade.
func (r *TagRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tags t USING boards b
		 WHERE b.id = t.board_id AND b.user_id = $1 AND t.id = $2`,
		userID, id,
	)
	if err != nil {
		return wrapErr("tagRepo.Delete", err)
	}

	return notFoundIfNone("tagRepo.Delete", tag)
}

// --- Card tags ---

type CardTagRepo struct {
	pool *pgxpool.Pool
}

func NewCardTagRepo(pool *pgxpool.Pool) *CardTagRepo {
	return &CardTagRepo{pool: pool}
}

// Create assigns a tag to a card. Card and tag must sit on the same board,
// owned by the user; otherwise nothing is inserted and domain.ErrNotFound is
// returned, whether or not the tag exists elsewhere. An existing assignment
// yields domain.ErrConflict.
func (r *CardTagRepo) Create(ctx context.Context, userID uuid.UUID, ct *domain.CardTag) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO card_tags (id, card_id, tag_id, created_at)
		 SELECT $1::uuid, k.id, t.id, $4::timestamptz
		 FROM cards k
		 JOIN columns c ON c.id = k.column_id
		 JOIN boards b ON b.id = c.board_id
		 JOIN tags t ON t.board_id = b.id
		 WHERE k.id = $2 AND t.id = $3 AND b.user_id = $5`,
		ct.ID, ct.CardID, ct.TagID, ct.CreatedAt, userID,
	)
	if err != nil {
		return wrapErr("cardTagRepo.Create", err)
	}

	return notFoundIfNone("cardTagRepo.Create", tag)
}

func (r *CardTagRepo) Delete(ctx context.Context, userID, cardID, tagID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM card_tags ct USING cards k
		 WHERE k.id = ct.card_id AND ct.card_id = $2 AND ct.tag_id = $3
		   AND k.column_id IN (`+ownedColumn+`$1)`,
		userID, cardID, tagID,
	)
	if err != nil {
		return wrapErr("cardTagRepo.Delete", err)
	}

	return notFoundIfNone("cardTagRepo.Delete", tag)
}

func (r *CardTagRepo) ListByCards(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) ([]*domain.CardTag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ct.id, ct.card_id, ct.tag_id, ct.created_at
		 FROM card_tags ct JOIN cards k ON k.id = ct.card_id
		 WHERE ct.card_id = ANY($2::uuid[]) AND k.column_id IN (`+ownedColumn+`$1)
		 ORDER BY ct.created_at, ct.id`,
		userID, uuidStrings(cardIDs),
	)
	if err != nil {
		return nil, wrapErr("cardTagRepo.ListByCards", err)
	}
	defer rows.Close()

	cardTags := []*domain.CardTag{}
	for rows.Next() {
		var ct domain.CardTag
		if err := rows.Scan(&ct.ID, &ct.CardID, &ct.TagID, &ct.CreatedAt); err != nil {
			return nil, fmt.Errorf("cardTagRepo.ListByCards: scan: %w", err)
		}
		cardTags = append(cardTags, &ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cardTagRepo.ListByCards: rows: %w", err)
	}

	return cardTags, nil
}
