package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

type CreateCardInput struct {
	ColumnID uuid.UUID `path:"columnID" doc:"Column ID"`
	Body     struct {
		Title string `json:"title" minLength:"1" maxLength:"255" doc:"Card title"`
	}
}

type CardOutput struct {
	Body *domain.Card
}

type CardIDInput struct {
	CardID uuid.UUID `path:"cardID" doc:"Card ID"`
}

type UpdateCardInput struct {
	CardID uuid.UUID `path:"cardID" doc:"Card ID"`
	Body   struct {
		Title       *string `json:"title,omitempty" minLength:"1" maxLength:"255" doc:"New title"`
		Description *string `json:"description,omitempty" maxLength:"10000" doc:"New description; empty clears it"`
	}
}

func RegisterCardRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-card",
		Method:        http.MethodPost,
		Path:          "/columns/{columnID}/cards",
		Summary:       "Append a card to a column",
		Tags:          []string{"Cards"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateCardInput) (*CardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		c, err := boards.CreateCard(ctx, userID, input.ColumnID, input.Body.Title)
		if err != nil {
			return nil, problem(err)
		}
		return &CardOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-card",
		Method:      http.MethodPatch,
		Path:        "/cards/{cardID}",
		Summary:     "Update a card's title or description",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *UpdateCardInput) (*CardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		patch := domain.CardPatch{Title: input.Body.Title, Description: input.Body.Description}
		c, err := boards.UpdateCard(ctx, userID, input.CardID, patch)
		if err != nil {
			return nil, problem(err)
		}
		return &CardOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-card",
		Method:        http.MethodDelete,
		Path:          "/cards/{cardID}",
		Summary:       "Delete a card",
		Tags:          []string{"Cards"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *CardIDInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if err := boards.DeleteCard(ctx, userID, input.CardID); err != nil {
			return nil, problem(err)
		}
		return nil, nil
	})
}
