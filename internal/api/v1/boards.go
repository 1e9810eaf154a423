package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/board"
	"github.com/gosuda/kanban/internal/domain"
)

type ListBoardsOutput struct {
	Body []*domain.Board
}

type CreateBoardInput struct {
	Body struct {
		Title       string `json:"title" minLength:"1" maxLength:"255" doc:"Board title"`
		Description string `json:"description,omitempty" maxLength:"2000" doc:"Optional description"`
	}
}

type CreateBoardOutput struct {
	Location string `header:"Location" doc:"Page showing the new board"`
	Body     *domain.Board
}

type BoardIDInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type BoardDetailOutput struct {
	Body *domain.BoardDetail
}

type UpdateBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Title       *string `json:"title,omitempty" minLength:"1" maxLength:"255" doc:"New title"`
		Description *string `json:"description,omitempty" maxLength:"2000" doc:"New description; empty clears it"`
	}
}

type BoardOutput struct {
	Body *domain.Board
}

type DragItemBody struct {
	ID   uuid.UUID `json:"id" doc:"Column or card ID"`
	Type string    `json:"type" enum:"column,card" doc:"Item kind"`
}

type DragEndInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Active DragItemBody  `json:"active" doc:"Dragged item"`
		Over   *DragItemBody `json:"over,omitempty" doc:"Item it was dropped on; absent when dropped outside any target"`
	}
}

func (in *DragEndInput) event() board.DragEndEvent {
	ev := board.DragEndEvent{
		Active: board.DragItem{ID: in.Body.Active.ID, Type: board.ItemType(in.Body.Active.Type)},
	}
	if in.Body.Over != nil {
		ev.Over = &board.DragItem{ID: in.Body.Over.ID, Type: board.ItemType(in.Body.Over.Type)}
	}
	return ev
}

func RegisterBoardRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List the caller's boards, newest first",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		list, err := boards.ListBoards(ctx, userID)
		if err != nil {
			return nil, problem(err)
		}
		if list == nil {
			list = []*domain.Board{}
		}
		return &ListBoardsOutput{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-board",
		Method:        http.MethodPost,
		Path:          "/boards",
		Summary:       "Create a board",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateBoardInput) (*CreateBoardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		b, err := boards.CreateBoard(ctx, userID, input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, problem(err)
		}
		return &CreateBoardOutput{Location: "/board/" + b.ID.String(), Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}",
		Summary:     "Get a board with its columns, cards and tags",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *BoardIDInput) (*BoardDetailOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		d, err := boards.GetBoard(ctx, userID, input.BoardID)
		if err != nil {
			return nil, problem(err)
		}
		return &BoardDetailOutput{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-board",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/refresh",
		Summary:     "Reload a board from the store",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *BoardIDInput) (*BoardDetailOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		d, err := boards.RefreshBoard(ctx, userID, input.BoardID)
		if err != nil {
			return nil, problem(err)
		}
		return &BoardDetailOutput{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-board",
		Method:      http.MethodPatch,
		Path:        "/boards/{boardID}",
		Summary:     "Update a board's title or description",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *UpdateBoardInput) (*BoardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		patch := domain.BoardPatch{Title: input.Body.Title, Description: input.Body.Description}
		b, err := boards.UpdateBoard(ctx, userID, input.BoardID, patch)
		if err != nil {
			return nil, problem(err)
		}
		return &BoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-board",
		Method:        http.MethodDelete,
		Path:          "/boards/{boardID}",
		Summary:       "Delete a board and everything on it",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *BoardIDInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if err := boards.DeleteBoard(ctx, userID, input.BoardID); err != nil {
			return nil, problem(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "drag-end",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/drag-end",
		Summary:     "Apply a finished drag of a column or card",
		Description: "Reorders columns, reorders cards within a column, or moves a card to another column. " +
			"Returns the resulting board. When a write fails the board is reloaded and 409 is returned.",
		Tags: []string{"Boards"},
	}, func(ctx context.Context, input *DragEndInput) (*BoardDetailOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		d, err := boards.HandleDragEnd(ctx, userID, input.BoardID, input.event())
		if err != nil {
			return nil, problem(err)
		}
		return &BoardDetailOutput{Body: d}, nil
	})
}
