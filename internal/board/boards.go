package board

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

// CreateBoard creates a board and prepends it to the cached board list.
func (s *Service) CreateBoard(ctx context.Context, userID uuid.UUID, title, description string) (*domain.Board, error) {
	b, err := domain.NewBoard(userID, title, description)
	if err != nil {
		return nil, s.fail(ctx, userID, opCreateBoard, err)
	}
	if err := s.store.Boards().Create(ctx, b); err != nil {
		return nil, s.fail(ctx, userID, opCreateBoard, err)
	}

	s.patchBoardList(ctx, userID, func(boards []*domain.Board) []*domain.Board {
		return append([]*domain.Board{b}, boards...)
	})
	s.succeed(ctx, userID, opCreateBoard)
	return b, nil
}

func (s *Service) UpdateBoard(ctx context.Context, userID, boardID uuid.UUID, patch domain.BoardPatch) (*domain.Board, error) {
	if err := patch.Validate(); err != nil {
		return nil, s.fail(ctx, userID, opUpdateBoard, err)
	}
	b, err := s.store.Boards().GetByID(ctx, userID, boardID)
	if err != nil {
		return nil, s.fail(ctx, userID, opUpdateBoard, err, "board_id", boardID)
	}
	b.Apply(patch)
	if err := s.store.Boards().Update(ctx, b); err != nil {
		return nil, s.fail(ctx, userID, opUpdateBoard, err, "board_id", boardID)
	}

	s.patchBoardList(ctx, userID, func(boards []*domain.Board) []*domain.Board {
		for i, existing := range boards {
			if existing.ID == b.ID {
				boards[i] = b
			}
		}
		return boards
	})
	s.patchSnapshot(ctx, boardID, func(d *domain.BoardDetail) bool {
		d.Board = *b
		return true
	})
	s.publish(ctx, Event{Type: EventBoardUpdated, BoardID: boardID, Data: b})
	s.succeed(ctx, userID, opUpdateBoard)
	return b, nil
}

// DeleteBoard deletes the board with everything on it, removes it from the
// cached list and drops its snapshot. Sessions viewing the board receive a
// board_deleted event.
func (s *Service) DeleteBoard(ctx context.Context, userID, boardID uuid.UUID) error {
	if err := s.store.Boards().Delete(ctx, userID, boardID); err != nil {
		return s.fail(ctx, userID, opDeleteBoard, err, "board_id", boardID)
	}

	s.patchBoardList(ctx, userID, func(boards []*domain.Board) []*domain.Board {
		return slices.DeleteFunc(boards, func(b *domain.Board) bool { return b.ID == boardID })
	})
	s.dropSnapshot(ctx, boardID)
	s.publish(ctx, Event{Type: EventBoardDeleted, BoardID: boardID, Data: DeletedData{ID: boardID}})
	s.succeed(ctx, userID, opDeleteBoard)
	return nil
}
