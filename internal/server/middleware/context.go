package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ContextKeyUserID    contextKey = "user_id"
	ContextKeySessionID contextKey = "session_id"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeySessionID).(string)
	return v, ok
}

// WithUser returns a copy of ctx carrying the authenticated user and session.
func WithUser(ctx context.Context, userID uuid.UUID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}
