package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Column is an ordered list of cards within a board. Position is
// board-relative and not guaranteed to be gap-free or unique.
type Column struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	BoardID   uuid.UUID `json:"board_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewColumn(boardID uuid.UUID, title string, position int) (*Column, error) {
	if boardID == uuid.Nil {
		return nil, fmt.Errorf("column: board ID is required: %w", ErrInvalidInput)
	}
	title, err := requireText("column: title", title)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Column{
		ID:        uuid.New(),
		Title:     title,
		BoardID:   boardID,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type ColumnPatch struct {
	Title *string
}

func (p ColumnPatch) Validate() error {
	if p.Title != nil {
		if _, err := requireText("column: title", *p.Title); err != nil {
			return err
		}
	}
	return nil
}

func (c *Column) Apply(p ColumnPatch) {
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
}

// ColumnRepository methods are scoped to boards owned by userID.
type ColumnRepository interface {
	Create(ctx context.Context, userID uuid.UUID, c *Column) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Column, error)
	ListByBoard(ctx context.Context, userID, boardID uuid.UUID) ([]*Column, error)
	Update(ctx context.Context, userID uuid.UUID, c *Column) error
	UpdatePosition(ctx context.Context, userID, id uuid.UUID, position int) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
