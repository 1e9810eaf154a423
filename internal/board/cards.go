package board

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

// CreateCard appends a card to the column, after the highest position.
func (s *Service) CreateCard(ctx context.Context, userID, columnID uuid.UUID, title string) (*domain.Card, error) {
	card, err := domain.NewCard(columnID, title, 0)
	if err != nil {
		return nil, s.fail(ctx, userID, opCreateCard, err)
	}
	boardID, err := s.boardOfColumn(ctx, userID, columnID)
	if err != nil {
		return nil, s.fail(ctx, userID, opCreateCard, err, "column_id", columnID)
	}

	d, err := s.board(ctx, userID, boardID)
	if err != nil {
		return nil, s.fail(ctx, userID, opCreateCard, err, "board_id", boardID)
	}
	col, _ := d.Column(columnID)
	if col == nil {
		// The snapshot predates the column.
		if d, err = s.reload(ctx, userID, boardID); err != nil {
			return nil, s.fail(ctx, userID, opCreateCard, err, "board_id", boardID)
		}
		if col, _ = d.Column(columnID); col == nil {
			return nil, s.fail(ctx, userID, opCreateCard, fmt.Errorf("column %s: %w", columnID, domain.ErrNotFound))
		}
	}
	card.Position = col.NextCardPosition()

	if err := s.store.Cards().Create(ctx, userID, card); err != nil {
		return nil, s.fail(ctx, userID, opCreateCard, err, "column_id", columnID)
	}

	s.patchSnapshot(ctx, boardID, func(d *domain.BoardDetail) bool {
		cd, _ := d.Column(columnID)
		if cd == nil {
			return false
		}
		cd.Cards = append(cd.Cards, &domain.CardDetail{Card: *card, Tags: []*domain.Tag{}})
		return true
	})
	s.publish(ctx, Event{Type: EventCardCreated, BoardID: boardID, Data: card})
	s.succeed(ctx, userID, opCreateCard)
	return card, nil
}

func (s *Service) UpdateCard(ctx context.Context, userID, cardID uuid.UUID, patch domain.CardPatch) (*domain.Card, error) {
	if err := patch.Validate(); err != nil {
		return nil, s.fail(ctx, userID, opUpdateCard, err)
	}
	card, err := s.store.Cards().GetByID(ctx, userID, cardID)
	if err != nil {
		return nil, s.fail(ctx, userID, opUpdateCard, err, "card_id", cardID)
	}
	card.Apply(patch)
	if err := s.store.Cards().Update(ctx, userID, card); err != nil {
		return nil, s.fail(ctx, userID, opUpdateCard, err, "card_id", cardID)
	}

	boardID, err := s.boardOfColumn(ctx, userID, card.ColumnID)
	if err != nil {
		return nil, s.fail(ctx, userID, opUpdateCard, err, "card_id", cardID)
	}
	s.patchSnapshot(ctx, boardID, func(d *domain.BoardDetail) bool {
		cd, _ := d.Card(cardID)
		if cd == nil {
			return false
		}
		cd.Title = card.Title
		cd.Description = card.Description
		cd.UpdatedAt = card.UpdatedAt
		return true
	})
	s.publish(ctx, Event{Type: EventCardUpdated, BoardID: boardID, Data: card})
	s.succeed(ctx, userID, opUpdateCard)
	return card, nil
}

func (s *Service) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	card, err := s.store.Cards().GetByID(ctx, userID, cardID)
	if err != nil {
		return s.fail(ctx, userID, opDeleteCard, err, "card_id", cardID)
	}
	boardID, err := s.boardOfColumn(ctx, userID, card.ColumnID)
	if err != nil {
		return s.fail(ctx, userID, opDeleteCard, err, "card_id", cardID)
	}
	if err := s.store.Cards().Delete(ctx, userID, cardID); err != nil {
		return s.fail(ctx, userID, opDeleteCard, err, "card_id", cardID)
	}

	s.patchSnapshot(ctx, boardID, func(d *domain.BoardDetail) bool {
		_, holder := d.Card(cardID)
		if holder == nil {
			return true
		}
		holder.Cards = slices.DeleteFunc(holder.Cards, func(c *domain.CardDetail) bool { return c.ID == cardID })
		return true
	})
	s.publish(ctx, Event{Type: EventCardDeleted, BoardID: boardID, Data: DeletedData{ID: cardID}})
	s.succeed(ctx, userID, opDeleteCard)
	return nil
}
