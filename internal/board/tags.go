package board

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

func (s *Service) CreateTag(ctx context.Context, userID, boardID uuid.UUID, name, color string) (*domain.Tag, error) {
	tag, err := domain.NewTag(boardID, name, color)
	if err != nil {
		return nil, s.fail(ctx, userID, opCreateTag, err)
	}
	if err := s.store.Tags().Create(ctx, userID, tag); err != nil {
		return nil, s.fail(ctx, userID, opCreateTag, err, "board_id", boardID)
	}

	s.patchSnapshot(ctx, boardID, func(d *domain.BoardDetail) bool {
		cp := *tag
		d.Tags = append(d.Tags, &cp)
		return true
	})
	s.publish(ctx, Event{Type: EventTagCreated, BoardID: boardID, Data: tag})
	s.succeed(ctx, userID, opCreateTag)
	return tag, nil
}

// UpdateTag renames or recolours a tag everywhere it is shown.
func (s *Service) UpdateTag(ctx context.Context, userID, tagID uuid.UUID, patch domain.TagPatch) (*domain.Tag, error) {
	if err := patch.Validate(); err != nil {
		return nil, s.fail(ctx, userID, opUpdateTag, err)
	}
	tag, err := s.store.Tags().GetByID(ctx, userID, tagID)
	if err != nil {
		return nil, s.fail(ctx, userID, opUpdateTag, err, "tag_id", tagID)
	}
	tag.Apply(patch)
	if err := s.store.Tags().Update(ctx, userID, tag); err != nil {
		return nil, s.fail(ctx, userID, opUpdateTag, err, "tag_id", tagID)
	}

	s.patchSnapshot(ctx, tag.BoardID, func(d *domain.BoardDetail) bool {
		eachTag(d, tagID, func(t *domain.Tag) {
			t.Name = tag.Name
			t.Color = tag.Color
		})
		return true
	})
	s.publish(ctx, Event{Type: EventTagUpdated, BoardID: tag.BoardID, Data: tag})
	s.succeed(ctx, userID, opUpdateTag)
	return tag, nil
}

// DeleteTag deletes the tag and unassigns it from every card.
func (s *Service) DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error {
	tag, err := s.store.Tags().GetByID(ctx, userID, tagID)
	if err != nil {
		return s.fail(ctx, userID, opDeleteTag, err, "tag_id", tagID)
	}
	if err := s.store.Tags().Delete(ctx, userID, tagID); err != nil {
		return s.fail(ctx, userID, opDeleteTag, err, "tag_id", tagID)
	}

	s.patchSnapshot(ctx, tag.BoardID, func(d *domain.BoardDetail) bool {
		isTag := func(t *domain.Tag) bool { return t.ID == tagID }
		d.Tags = slices.DeleteFunc(d.Tags, isTag)
		for _, col := range d.Columns {
			for _, card := range col.Cards {
				card.Tags = slices.DeleteFunc(card.Tags, isTag)
			}
		}
		return true
	})
	s.publish(ctx, Event{Type: EventTagDeleted, BoardID: tag.BoardID, Data: DeletedData{ID: tagID}})
	s.succeed(ctx, userID, opDeleteTag)
	return nil
}

// AddTagToCard assigns a tag to a card. The tag must belong to the card's
// board. Assigning a tag the card already carries is a no-op.
func (s *Service) AddTagToCard(ctx context.Context, userID, cardID, tagID uuid.UUID) error {
	card, err := s.store.Cards().GetByID(ctx, userID, cardID)
	if err != nil {
		return s.fail(ctx, userID, opAddTag, err, "card_id", cardID, "tag_id", tagID)
	}
	boardID, err := s.boardOfColumn(ctx, userID, card.ColumnID)
	if err != nil {
		return s.fail(ctx, userID, opAddTag, err, "card_id", cardID, "tag_id", tagID)
	}
	tag, err := s.store.Tags().GetByID(ctx, userID, tagID)
	if err != nil {
		return s.fail(ctx, userID, opAddTag, err, "card_id", cardID, "tag_id", tagID)
	}
	if tag.BoardID != boardID {
		return s.fail(ctx, userID, opAddTag, fmt.Errorf("tag %s is not on board %s: %w", tagID, boardID, domain.ErrInvalidInput))
	}

	if err := s.store.CardTags().Create(ctx, userID, domain.NewCardTag(cardID, tagID)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		return s.fail(ctx, userID, opAddTag, err, "card_id", cardID, "tag_id", tagID)
	}

	s.patchSnapshot(ctx, boardID, func(d *domain.BoardDetail) bool {
		cd, _ := d.Card(cardID)
		tag := d.Tag(tagID)
		if cd == nil || tag == nil {
			return false
		}
		if !slices.ContainsFunc(cd.Tags, func(t *domain.Tag) bool { return t.ID == tagID }) {
			cp := *tag
			cd.Tags = append(cd.Tags, &cp)
		}
		return true
	})
	s.publish(ctx, Event{Type: EventCardTagged, BoardID: boardID, Data: CardTagData{CardID: cardID, TagID: tagID}})
	s.succeed(ctx, userID, opAddTag)
	return nil
}

// RemoveTagFromCard unassigns a tag. Removing a tag the card does not carry
// is a no-op.
func (s *Service) RemoveTagFromCard(ctx context.Context, userID, cardID, tagID uuid.UUID) error {
	card, err := s.store.Cards().GetByID(ctx, userID, cardID)
	if err != nil {
		return s.fail(ctx, userID, opRemoveTag, err, "card_id", cardID, "tag_id", tagID)
	}
	if err := s.store.CardTags().Delete(ctx, userID, cardID, tagID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return s.fail(ctx, userID, opRemoveTag, err, "card_id", cardID, "tag_id", tagID)
	}

	boardID, err := s.boardOfColumn(ctx, userID, card.ColumnID)
	if err != nil {
		return s.fail(ctx, userID, opRemoveTag, err, "card_id", cardID, "tag_id", tagID)
	}
	s.patchSnapshot(ctx, boardID, func(d *domain.BoardDetail) bool {
		if cd, _ := d.Card(cardID); cd != nil {
			cd.Tags = slices.DeleteFunc(cd.Tags, func(t *domain.Tag) bool { return t.ID == tagID })
		}
		return true
	})
	s.publish(ctx, Event{Type: EventCardUntagged, BoardID: boardID, Data: CardTagData{CardID: cardID, TagID: tagID}})
	s.succeed(ctx, userID, opRemoveTag)
	return nil
}

// eachTag calls fn for the board tag with the given ID and every copy of it
// on a card.
func eachTag(d *domain.BoardDetail, tagID uuid.UUID, fn func(t *domain.Tag)) {
	for _, t := range d.Tags {
		if t.ID == tagID {
			fn(t)
		}
	}
	for _, col := range d.Columns {
		for _, card := range col.Cards {
			for _, t := range card.Tags {
				if t.ID == tagID {
					fn(t)
				}
			}
		}
	}
}
