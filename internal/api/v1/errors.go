package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/board"
	"github.com/gosuda/kanban/internal/domain"
	"github.com/gosuda/kanban/internal/server/middleware"
)

const (
	msgNotFound     = "Database row not found"
	msgLoginNeeded  = "You need to be logged in to access this resource"
	msgExists       = "This record already exists"
	msgNoPermission = "You don't have permission to perform this action"
	msgUnavailable  = "An error occurred while connecting to the database"
)

// problem converts a service error into an RFC 7807 response.
func problem(err error) error {
	switch {
	case errors.Is(err, board.ErrReorderFailed):
		return huma.Error409Conflict("The change could not be saved; the board was reloaded", err)
	case errors.Is(err, domain.ErrInvalidInput):
		return huma.Error422UnprocessableEntity("invalid input", err)
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(msgNotFound)
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(msgExists)
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden(msgNoPermission)
	case errors.Is(err, domain.ErrUnauthorized):
		return huma.Error401Unauthorized(msgLoginNeeded)
	default:
		return huma.Error500InternalServerError(msgUnavailable, err)
	}
}

func currentUser(ctx context.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, huma.Error401Unauthorized(msgLoginNeeded)
	}
	return userID, nil
}
