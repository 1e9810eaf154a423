package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/kanban/internal/api/v1"
	"github.com/gosuda/kanban/internal/domain"
)

func TestColumnRoutes(t *testing.T) {
	t.Parallel()

	t.Run("create_appends", func(t *testing.T) {
		t.Parallel()

		bid := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterColumnRoutes(api, &mockBoardService{
			createColumnFunc: func(_ context.Context, _, boardID uuid.UUID, title string) (*domain.Column, error) {
				assert.Equal(t, bid, boardID)
				return &domain.Column{ID: uuid.New(), Title: title, BoardID: boardID, Position: 3}, nil
			},
		})

		resp := api.PostCtx(userCtx(uuid.New()), "/boards/"+bid.String()+"/columns", map[string]any{"title": "Done"})
		require.Equal(t, http.StatusCreated, resp.Code)

		var got domain.Column
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, "Done", got.Title)
		assert.Equal(t, 3, got.Position)
	})

	t.Run("rename", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterColumnRoutes(api, &mockBoardService{
			updateColumnFunc: func(_ context.Context, _, columnID uuid.UUID, patch domain.ColumnPatch) (*domain.Column, error) {
				require.NotNil(t, patch.Title)
				return &domain.Column{ID: columnID, Title: *patch.Title}, nil
			},
		})

		resp := api.PatchCtx(userCtx(uuid.New()), "/columns/"+cid.String(), map[string]any{"title": "Doing"})
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("delete_foreign_column", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterColumnRoutes(api, &mockBoardService{
			deleteColumnFunc: func(context.Context, uuid.UUID, uuid.UUID) error { return domain.ErrForbidden },
		})

		resp := api.DeleteCtx(userCtx(uuid.New()), "/columns/"+uuid.NewString())
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestCardRoutes(t *testing.T) {
	t.Parallel()

	t.Run("create", func(t *testing.T) {
		t.Parallel()

		colID := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterCardRoutes(api, &mockBoardService{
			createCardFunc: func(_ context.Context, _, columnID uuid.UUID, title string) (*domain.Card, error) {
				assert.Equal(t, colID, columnID)
				return &domain.Card{ID: uuid.New(), Title: title, ColumnID: columnID}, nil
			},
		})

		resp := api.PostCtx(userCtx(uuid.New()), "/columns/"+colID.String()+"/cards", map[string]any{"title": "Ship it"})
		assert.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("empty_title", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCardRoutes(api, &mockBoardService{})

		resp := api.PostCtx(userCtx(uuid.New()), "/columns/"+uuid.NewString()+"/cards", map[string]any{"title": ""})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("update_description", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCardRoutes(api, &mockBoardService{
			updateCardFunc: func(_ context.Context, _, cardID uuid.UUID, patch domain.CardPatch) (*domain.Card, error) {
				assert.Nil(t, patch.Title)
				require.NotNil(t, patch.Description)
				return &domain.Card{ID: cardID, Title: "Ship it", Description: patch.Description}, nil
			},
		})

		resp := api.PatchCtx(userCtx(uuid.New()), "/cards/"+uuid.NewString(), map[string]any{"description": "Friday"})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Friday")
	})

	t.Run("delete_missing", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCardRoutes(api, &mockBoardService{
			deleteCardFunc: func(context.Context, uuid.UUID, uuid.UUID) error { return domain.ErrNotFound },
		})

		resp := api.DeleteCtx(userCtx(uuid.New()), "/cards/"+uuid.NewString())
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestTagRoutes(t *testing.T) {
	t.Parallel()

	t.Run("create", func(t *testing.T) {
		t.Parallel()

		bid := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterTagRoutes(api, &mockBoardService{
			createTagFunc: func(_ context.Context, _, boardID uuid.UUID, name, color string) (*domain.Tag, error) {
				assert.Equal(t, "bug", name)
				assert.Equal(t, "#ef4444", color)
				return &domain.Tag{ID: uuid.New(), Name: name, Color: color, BoardID: boardID}, nil
			},
		})

		resp := api.PostCtx(userCtx(uuid.New()), "/boards/"+bid.String()+"/tags", map[string]any{
			"name":  "bug",
			"color": "#ef4444",
		})
		assert.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("bad_colour", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTagRoutes(api, &mockBoardService{})

		for _, color := range []string{"red", "#12345", "ef4444", "#gggggg"} {
			resp := api.PostCtx(userCtx(uuid.New()), "/boards/"+uuid.NewString()+"/tags", map[string]any{
				"name":  "bug",
				"color": color,
			})
			assert.Equal(t, http.StatusUnprocessableEntity, resp.Code, color)
		}
	})

	t.Run("recolour", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTagRoutes(api, &mockBoardService{
			updateTagFunc: func(_ context.Context, _, tagID uuid.UUID, patch domain.TagPatch) (*domain.Tag, error) {
				assert.Nil(t, patch.Name)
				require.NotNil(t, patch.Color)
				return &domain.Tag{ID: tagID, Name: "bug", Color: *patch.Color}, nil
			},
		})

		resp := api.PatchCtx(userCtx(uuid.New()), "/tags/"+uuid.NewString(), map[string]any{"color": "#fff"})
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTagRoutes(api, &mockBoardService{
			deleteTagFunc: func(context.Context, uuid.UUID, uuid.UUID) error { return nil },
		})

		resp := api.DeleteCtx(userCtx(uuid.New()), "/tags/"+uuid.NewString())
		assert.Equal(t, http.StatusNoContent, resp.Code)
	})

	t.Run("attach_and_detach", func(t *testing.T) {
		t.Parallel()

		cardID, tagID := uuid.New(), uuid.New()
		var added, removed int

		_, api := humatest.New(t)
		v1.RegisterTagRoutes(api, &mockBoardService{
			addTagFunc: func(_ context.Context, _, c, tg uuid.UUID) error {
				assert.Equal(t, cardID, c)
				assert.Equal(t, tagID, tg)
				added++
				return nil
			},
			removeTagFunc: func(_ context.Context, _, c, tg uuid.UUID) error {
				assert.Equal(t, cardID, c)
				assert.Equal(t, tagID, tg)
				removed++
				return nil
			},
		})

		path := "/cards/" + cardID.String() + "/tags/" + tagID.String()
		ctx := userCtx(uuid.New())

		assert.Equal(t, http.StatusNoContent, api.PutCtx(ctx, path).Code)
		assert.Equal(t, http.StatusNoContent, api.PutCtx(ctx, path).Code)
		assert.Equal(t, http.StatusNoContent, api.DeleteCtx(ctx, path).Code)
		assert.Equal(t, 2, added)
		assert.Equal(t, 1, removed)
	})

	t.Run("tag_from_other_board", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTagRoutes(api, &mockBoardService{
			addTagFunc: func(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error { return domain.ErrInvalidInput },
		})

		resp := api.PutCtx(userCtx(uuid.New()), "/cards/"+uuid.NewString()+"/tags/"+uuid.NewString())
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}
