package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/auth"
	"github.com/gosuda/kanban/internal/board"
	"github.com/gosuda/kanban/internal/domain"
)

// BoardService abstracts the board state layer for handler testing.
// *board.Service satisfies this interface.
type BoardService interface {
	ListBoards(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	GetBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error)
	RefreshBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error)
	CreateBoard(ctx context.Context, userID uuid.UUID, title, description string) (*domain.Board, error)
	UpdateBoard(ctx context.Context, userID, boardID uuid.UUID, patch domain.BoardPatch) (*domain.Board, error)
	DeleteBoard(ctx context.Context, userID, boardID uuid.UUID) error

	CreateColumn(ctx context.Context, userID, boardID uuid.UUID, title string) (*domain.Column, error)
	UpdateColumn(ctx context.Context, userID, columnID uuid.UUID, patch domain.ColumnPatch) (*domain.Column, error)
	DeleteColumn(ctx context.Context, userID, columnID uuid.UUID) error

	CreateCard(ctx context.Context, userID, columnID uuid.UUID, title string) (*domain.Card, error)
	UpdateCard(ctx context.Context, userID, cardID uuid.UUID, patch domain.CardPatch) (*domain.Card, error)
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error

	CreateTag(ctx context.Context, userID, boardID uuid.UUID, name, color string) (*domain.Tag, error)
	UpdateTag(ctx context.Context, userID, tagID uuid.UUID, patch domain.TagPatch) (*domain.Tag, error)
	DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error
	AddTagToCard(ctx context.Context, userID, cardID, tagID uuid.UUID) error
	RemoveTagFromCard(ctx context.Context, userID, cardID, tagID uuid.UUID) error

	HandleDragEnd(ctx context.Context, userID, boardID uuid.UUID, ev board.DragEndEvent) (*domain.BoardDetail, error)
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*auth.Session, error)
	BeginOAuth(ctx context.Context, provider string) (string, error)
	CompleteOAuth(ctx context.Context, provider, state, code string) (*auth.Session, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	SignOut(ctx context.Context, p *auth.Principal) error
}
