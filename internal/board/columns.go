package board

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

// CreateColumn appends a column to the board, after the highest position.
func (s *Service) CreateColumn(ctx context.Context, userID, boardID uuid.UUID, title string) (*domain.Column, error) {
	col, err := domain.NewColumn(boardID, title, 0)
	if err != nil {
		return nil, s.fail(ctx, userID, opCreateColumn, err)
	}
	d, err := s.board(ctx, userID, boardID)
	if err != nil {
		return nil, s.fail(ctx, userID, opCreateColumn, err, "board_id", boardID)
	}
	col.Position = d.NextColumnPosition()

	if err := s.store.Columns().Create(ctx, userID, col); err != nil {
		return nil, s.fail(ctx, userID, opCreateColumn, err, "board_id", boardID)
	}

	s.patchSnapshot(ctx, boardID, func(d *domain.BoardDetail) bool {
		d.Columns = append(d.Columns, &domain.ColumnDetail{Column: *col, Cards: []*domain.CardDetail{}})
		return true
	})
	s.publish(ctx, Event{Type: EventColumnCreated, BoardID: boardID, Data: col})
	s.succeed(ctx, userID, opCreateColumn)
	return col, nil
}

func (s *Service) UpdateColumn(ctx context.Context, userID, columnID uuid.UUID, patch domain.ColumnPatch) (*domain.Column, error) {
	if err := patch.Validate(); err != nil {
		return nil, s.fail(ctx, userID, opUpdateColumn, err)
	}
	col, err := s.store.Columns().GetByID(ctx, userID, columnID)
	if err != nil {
		return nil, s.fail(ctx, userID, opUpdateColumn, err, "column_id", columnID)
	}
	col.Apply(patch)
	if err := s.store.Columns().Update(ctx, userID, col); err != nil {
		return nil, s.fail(ctx, userID, opUpdateColumn, err, "column_id", columnID)
	}

	s.patchSnapshot(ctx, col.BoardID, func(d *domain.BoardDetail) bool {
		cd, _ := d.Column(col.ID)
		if cd == nil {
			return false
		}
		cd.Title = col.Title
		cd.UpdatedAt = col.UpdatedAt
		return true
	})
	s.publish(ctx, Event{Type: EventColumnUpdated, BoardID: col.BoardID, Data: col})
	s.succeed(ctx, userID, opUpdateColumn)
	return col, nil
}

// DeleteColumn deletes the column and its cards.
func (s *Service) DeleteColumn(ctx context.Context, userID, columnID uuid.UUID) error {
	col, err := s.store.Columns().GetByID(ctx, userID, columnID)
	if err != nil {
		return s.fail(ctx, userID, opDeleteColumn, err, "column_id", columnID)
	}
	if err := s.store.Columns().Delete(ctx, userID, columnID); err != nil {
		return s.fail(ctx, userID, opDeleteColumn, err, "column_id", columnID)
	}

	s.patchSnapshot(ctx, col.BoardID, func(d *domain.BoardDetail) bool {
		d.Columns = slices.DeleteFunc(d.Columns, func(c *domain.ColumnDetail) bool { return c.ID == columnID })
		return true
	})
	s.publish(ctx, Event{Type: EventColumnDeleted, BoardID: col.BoardID, Data: DeletedData{ID: columnID}})
	s.succeed(ctx, userID, opDeleteColumn)
	return nil
}
