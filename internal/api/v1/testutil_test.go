package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/auth"
	"github.com/gosuda/kanban/internal/board"
	"github.com/gosuda/kanban/internal/domain"
	"github.com/gosuda/kanban/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the authenticated user for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return middleware.WithUser(context.Background(), userID, "session-1")
}

// ---------------------------------------------------------------------------
// Mock BoardService
// ---------------------------------------------------------------------------

type mockBoardService struct {
	listBoardsFunc   func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	getBoardFunc     func(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error)
	refreshBoardFunc func(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error)
	createBoardFunc  func(ctx context.Context, userID uuid.UUID, title, description string) (*domain.Board, error)
	updateBoardFunc  func(ctx context.Context, userID, boardID uuid.UUID, patch domain.BoardPatch) (*domain.Board, error)
	deleteBoardFunc  func(ctx context.Context, userID, boardID uuid.UUID) error

	createColumnFunc func(ctx context.Context, userID, boardID uuid.UUID, title string) (*domain.Column, error)
	updateColumnFunc func(ctx context.Context, userID, columnID uuid.UUID, patch domain.ColumnPatch) (*domain.Column, error)
	deleteColumnFunc func(ctx context.Context, userID, columnID uuid.UUID) error

	createCardFunc func(ctx context.Context, userID, columnID uuid.UUID, title string) (*domain.Card, error)
	updateCardFunc func(ctx context.Context, userID, cardID uuid.UUID, patch domain.CardPatch) (*domain.Card, error)
	deleteCardFunc func(ctx context.Context, userID, cardID uuid.UUID) error

	createTagFunc func(ctx context.Context, userID, boardID uuid.UUID, name, color string) (*domain.Tag, error)
	updateTagFunc func(ctx context.Context, userID, tagID uuid.UUID, patch domain.TagPatch) (*domain.Tag, error)
	deleteTagFunc func(ctx context.Context, userID, tagID uuid.UUID) error
	addTagFunc    func(ctx context.Context, userID, cardID, tagID uuid.UUID) error
	removeTagFunc func(ctx context.Context, userID, cardID, tagID uuid.UUID) error
	dragEndFunc   func(ctx context.Context, userID, boardID uuid.UUID, ev board.DragEndEvent) (*domain.BoardDetail, error)
}

func (m *mockBoardService) ListBoards(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	return m.listBoardsFunc(ctx, userID)
}

func (m *mockBoardService) GetBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error) {
	return m.getBoardFunc(ctx, userID, boardID)
}

func (m *mockBoardService) RefreshBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error) {
	return m.refreshBoardFunc(ctx, userID, boardID)
}

func (m *mockBoardService) CreateBoard(ctx context.Context, userID uuid.UUID, title, description string) (*domain.Board, error) {
	return m.createBoardFunc(ctx, userID, title, description)
}

func (m *mockBoardService) UpdateBoard(ctx context.Context, userID, boardID uuid.UUID, patch domain.BoardPatch) (*domain.Board, error) {
	return m.updateBoardFunc(ctx, userID, boardID, patch)
}

func (m *mockBoardService) DeleteBoard(ctx context.Context, userID, boardID uuid.UUID) error {
	return m.deleteBoardFunc(ctx, userID, boardID)
}

func (m *mockBoardService) CreateColumn(ctx context.Context, userID, boardID uuid.UUID, title string) (*domain.Column, error) {
	return m.createColumnFunc(ctx, userID, boardID, title)
}

func (m *mockBoardService) UpdateColumn(ctx context.Context, userID, columnID uuid.UUID, patch domain.ColumnPatch) (*domain.Column, error) {
	return m.updateColumnFunc(ctx, userID, columnID, patch)
}

func (m *mockBoardService) DeleteColumn(ctx context.Context, userID, columnID uuid.UUID) error {
	return m.deleteColumnFunc(ctx, userID, columnID)
}

func (m *mockBoardService) CreateCard(ctx context.Context, userID, columnID uuid.UUID, title string) (*domain.Card, error) {
	return m.createCardFunc(ctx, userID, columnID, title)
}

func (m *mockBoardService) UpdateCard(ctx context.Context, userID, cardID uuid.UUID, patch domain.CardPatch) (*domain.Card, error) {
	return m.updateCardFunc(ctx, userID, cardID, patch)
}

func (m *mockBoardService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	return m.deleteCardFunc(ctx, userID, cardID)
}

func (m *mockBoardService) CreateTag(ctx context.Context, userID, boardID uuid.UUID, name, color string) (*domain.Tag, error) {
	return m.createTagFunc(ctx, userID, boardID, name, color)
}

func (m *mockBoardService) UpdateTag(ctx context.Context, userID, tagID uuid.UUID, patch domain.TagPatch) (*domain.Tag, error) {
	return m.updateTagFunc(ctx, userID, tagID, patch)
}

func (m *mockBoardService) DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error {
	return m.deleteTagFunc(ctx, userID, tagID)
}

func (m *mockBoardService) AddTagToCard(ctx context.Context, userID, cardID, tagID uuid.UUID) error {
	return m.addTagFunc(ctx, userID, cardID, tagID)
}

func (m *mockBoardService) RemoveTagFromCard(ctx context.Context, userID, cardID, tagID uuid.UUID) error {
	return m.removeTagFunc(ctx, userID, cardID, tagID)
}

func (m *mockBoardService) HandleDragEnd(ctx context.Context, userID, boardID uuid.UUID, ev board.DragEndEvent) (*domain.BoardDetail, error) {
	return m.dragEndFunc(ctx, userID, boardID, ev)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	signUpFunc        func(ctx context.Context, email, password, name string) (*auth.Session, error)
	signInFunc        func(ctx context.Context, email, password string) (*auth.Session, error)
	refreshFunc       func(ctx context.Context, refreshToken string) (*auth.Session, error)
	beginOAuthFunc    func(ctx context.Context, provider string) (string, error)
	completeOAuthFunc func(ctx context.Context, provider, state, code string) (*auth.Session, error)
	getUserFunc       func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	signOutFunc       func(ctx context.Context, p *auth.Principal) error
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password, name string) (*auth.Session, error) {
	return m.signUpFunc(ctx, email, password, name)
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	return m.signInFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshSession(ctx context.Context, refreshToken string) (*auth.Session, error) {
	return m.refreshFunc(ctx, refreshToken)
}

func (m *mockAuthService) BeginOAuth(ctx context.Context, provider string) (string, error) {
	return m.beginOAuthFunc(ctx, provider)
}

func (m *mockAuthService) CompleteOAuth(ctx context.Context, provider, state, code string) (*auth.Session, error) {
	return m.completeOAuthFunc(ctx, provider, state, code)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.getUserFunc(ctx, userID)
}

func (m *mockAuthService) SignOut(ctx context.Context, p *auth.Principal) error {
	return m.signOutFunc(ctx, p)
}
