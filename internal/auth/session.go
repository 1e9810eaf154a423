package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

// Session is the token pair handed to a client after sign-in.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *domain.User `json:"user"`
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID    uuid.UUID
	SessionID string
}

type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
	EventSignedOut      Event = "SIGNED_OUT"
)

// StateChange is broadcast to a user's listeners whenever one of their
// sessions starts, refreshes or ends.
type StateChange struct {
	Event     Event     `json:"event"`
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
}
