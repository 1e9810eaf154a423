package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

type CreateTagInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Name  string `json:"name" minLength:"1" maxLength:"50" doc:"Tag name"`
		Color string `json:"color" pattern:"^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$" doc:"Hex colour, e.g. #3b82f6"`
	}
}

type TagOutput struct {
	Body *domain.Tag
}

type TagIDInput struct {
	TagID uuid.UUID `path:"tagID" doc:"Tag ID"`
}

type UpdateTagInput struct {
	TagID uuid.UUID `path:"tagID" doc:"Tag ID"`
	Body  struct {
		Name  *string `json:"name,omitempty" minLength:"1" maxLength:"50" doc:"New name"`
		Color *string `json:"color,omitempty" pattern:"^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$" doc:"New hex colour"`
	}
}

type CardTagInput struct {
	CardID uuid.UUID `path:"cardID" doc:"Card ID"`
	TagID  uuid.UUID `path:"tagID" doc:"Tag ID"`
}

func RegisterTagRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-tag",
		Method:        http.MethodPost,
		Path:          "/boards/{boardID}/tags",
		Summary:       "Define a tag on a board",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		tag, err := boards.CreateTag(ctx, userID, input.BoardID, input.Body.Name, input.Body.Color)
		if err != nil {
			return nil, problem(err)
		}
		return &TagOutput{Body: tag}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tag",
		Method:      http.MethodPatch,
		Path:        "/tags/{tagID}",
		Summary:     "Rename or recolour a tag",
		Tags:        []string{"Tags"},
	}, func(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		tag, err := boards.UpdateTag(ctx, userID, input.TagID, domain.TagPatch{Name: input.Body.Name, Color: input.Body.Color})
		if err != nil {
			return nil, problem(err)
		}
		return &TagOutput{Body: tag}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-tag",
		Method:        http.MethodDelete,
		Path:          "/tags/{tagID}",
		Summary:       "Delete a tag and remove it from every card",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *TagIDInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if err := boards.DeleteTag(ctx, userID, input.TagID); err != nil {
			return nil, problem(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-card-tag",
		Method:        http.MethodPut,
		Path:          "/cards/{cardID}/tags/{tagID}",
		Summary:       "Attach a tag to a card",
		Description:   "Attaching a tag the card already has is a no-op.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *CardTagInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if err := boards.AddTagToCard(ctx, userID, input.CardID, input.TagID); err != nil {
			return nil, problem(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-card-tag",
		Method:        http.MethodDelete,
		Path:          "/cards/{cardID}/tags/{tagID}",
		Summary:       "Detach a tag from a card",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *CardTagInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if err := boards.RemoveTagFromCard(ctx, userID, input.CardID, input.TagID); err != nil {
			return nil, problem(err)
		}
		return nil, nil
	})
}
