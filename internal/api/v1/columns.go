package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

type CreateColumnInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Title string `json:"title" minLength:"1" maxLength:"255" doc:"Column title"`
	}
}

type ColumnOutput struct {
	Body *domain.Column
}

type ColumnIDInput struct {
	ColumnID uuid.UUID `path:"columnID" doc:"Column ID"`
}

type UpdateColumnInput struct {
	ColumnID uuid.UUID `path:"columnID" doc:"Column ID"`
	Body     struct {
		Title *string `json:"title,omitempty" minLength:"1" maxLength:"255" doc:"New title"`
	}
}

func RegisterColumnRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-column",
		Method:        http.MethodPost,
		Path:          "/boards/{boardID}/columns",
		Summary:       "Append a column to a board",
		Tags:          []string{"Columns"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateColumnInput) (*ColumnOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		c, err := boards.CreateColumn(ctx, userID, input.BoardID, input.Body.Title)
		if err != nil {
			return nil, problem(err)
		}
		return &ColumnOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-column",
		Method:      http.MethodPatch,
		Path:        "/columns/{columnID}",
		Summary:     "Rename a column",
		Tags:        []string{"Columns"},
	}, func(ctx context.Context, input *UpdateColumnInput) (*ColumnOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		c, err := boards.UpdateColumn(ctx, userID, input.ColumnID, domain.ColumnPatch{Title: input.Body.Title})
		if err != nil {
			return nil, problem(err)
		}
		return &ColumnOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-column",
		Method:        http.MethodDelete,
		Path:          "/columns/{columnID}",
		Summary:       "Delete a column and its cards",
		Tags:          []string{"Columns"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ColumnIDInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if err := boards.DeleteColumn(ctx, userID, input.ColumnID); err != nil {
			return nil, problem(err)
		}
		return nil, nil
	})
}
