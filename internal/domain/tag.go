package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var tagColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Tag is a coloured label belonging to one board.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	BoardID   uuid.UUID `json:"board_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CardTag assigns a tag to a card. The (card, tag) pair is unique.
type CardTag struct {
	ID        uuid.UUID `json:"id"`
	CardID    uuid.UUID `json:"card_id"`
	TagID     uuid.UUID `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTag(boardID uuid.UUID, name, color string) (*Tag, error) {
	if boardID == uuid.Nil {
		return nil, fmt.Errorf("tag: board ID is required: %w", ErrInvalidInput)
	}
	name, err := requireText("tag: name", name)
	if err != nil {
		return nil, err
	}
	if err := validateColor(color); err != nil {
		return nil, err
	}
	return &Tag{
		ID:        uuid.New(),
		Name:      name,
		Color:     color,
		BoardID:   boardID,
		CreatedAt: time.Now(),
	}, nil
}

func NewCardTag(cardID, tagID uuid.UUID) *CardTag {
	return &CardTag{
		ID:        uuid.New(),
		CardID:    cardID,
		TagID:     tagID,
		CreatedAt: time.Now(),
	}
}

type TagPatch struct {
	Name  *string
	Color *string
}

func (p TagPatch) Validate() error {
	if p.Name != nil {
		if _, err := requireText("tag: name", *p.Name); err != nil {
			return err
		}
	}
	if p.Color != nil {
		return validateColor(*p.Color)
	}
	return nil
}

func (t *Tag) Apply(p TagPatch) {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
}

func validateColor(color string) error {
	if !tagColorPattern.MatchString(color) {
		return fmt.Errorf("tag: color %q must be a hex colour like #3b82f6: %w", color, ErrInvalidInput)
	}
	return nil
}

// TagRepository methods are scoped to boards owned by userID.
type TagRepository interface {
	Create(ctx context.Context, userID uuid.UUID, t *Tag) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Tag, error)
	ListByBoard(ctx context.Context, userID, boardID uuid.UUID) ([]*Tag, error)
	Update(ctx context.Context, userID uuid.UUID, t *Tag) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// CardTagRepository methods are scoped to boards owned by userID.
// Create returns ErrConflict when the pair already exists.
type CardTagRepository interface {
	Create(ctx context.Context, userID uuid.UUID, ct *CardTag) error
	Delete(ctx context.Context, userID, cardID, tagID uuid.UUID) error
	ListByCards(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) ([]*CardTag, error)
}
