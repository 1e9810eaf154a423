package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card is a task item. Position is column-relative.
type Card struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ColumnID    uuid.UUID `json:"column_id"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCard(columnID uuid.UUID, title string, position int) (*Card, error) {
	if columnID == uuid.Nil {
		return nil, fmt.Errorf("card: column ID is required: %w", ErrInvalidInput)
	}
	title, err := requireText("card: title", title)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Card{
		ID:        uuid.New(),
		Title:     title,
		ColumnID:  columnID,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CardPatch is a partial card update. A non-nil empty Description clears it.
type CardPatch struct {
	Title       *string
	Description *string
}

func (p CardPatch) Validate() error {
	if p.Title != nil {
		if _, err := requireText("card: title", *p.Title); err != nil {
			return err
		}
	}
	return nil
}

func (c *Card) Apply(p CardPatch) {
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		c.Description = OptionalText(*p.Description)
	}
}

// CardRepository methods are scoped to boards owned by userID.
type CardRepository interface {
	Create(ctx context.Context, userID uuid.UUID, c *Card) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Card, error)
	ListByColumns(ctx context.Context, userID uuid.UUID, columnIDs []uuid.UUID) ([]*Card, error)
	Update(ctx context.Context, userID uuid.UUID, c *Card) error
	// Move sets both the column and the position of a card.
	Move(ctx context.Context, userID, id, columnID uuid.UUID, position int) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
