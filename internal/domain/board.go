package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Board is the root of a user's column/card hierarchy.
type Board struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBoard creates a Board owned by userID. An empty description is stored as NULL.
func NewBoard(userID uuid.UUID, title, description string) (*Board, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("board: user ID is required: %w", ErrInvalidInput)
	}
	title, err := requireText("board: title", title)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Board{
		ID:          uuid.New(),
		Title:       title,
		Description: OptionalText(description),
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// BoardPatch is a partial board update. A non-nil empty Description clears it.
type BoardPatch struct {
	Title       *string
	Description *string
}

func (p BoardPatch) Validate() error {
	if p.Title != nil {
		if _, err := requireText("board: title", *p.Title); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the set fields of p onto b.
func (b *Board) Apply(p BoardPatch) {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		b.Description = OptionalText(*p.Description)
	}
}

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Board, error)
	List(ctx context.Context, userID uuid.UUID) ([]*Board, error)
	Update(ctx context.Context, b *Board) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// OptionalText returns nil for an empty string, otherwise a pointer to s.
func OptionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func requireText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is required: %w", field, ErrInvalidInput)
	}
	return s, nil
}
