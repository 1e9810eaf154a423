package ws

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/kanban/internal/domain"
	"github.com/gosuda/kanban/internal/server/middleware"
	redisstore "github.com/gosuda/kanban/internal/store/redis"
)

// Broker is the pub/sub transport behind the hub and the publisher.
// *redisstore.PubSub satisfies it.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// BoardAccess checks that a user may watch a board. A refusal must not be
// reported to the user by any other channel; the HTTP status is the answer.
type BoardAccess interface {
	CheckAccess(ctx context.Context, userID, boardID uuid.UUID) error
}

// Hub fans board events and per-user messages out to WebSocket clients.
// Every server instance subscribes through the broker, so a mutation handled
// by one instance reaches clients connected to another.
type Hub struct {
	broker  Broker
	boards  BoardAccess
	origins []string
}

// NewHub creates a hub. origins lists the host patterns allowed to open a
// socket from a browser; the request's own host is always allowed.
func NewHub(broker Broker, boards BoardAccess, origins ...string) *Hub {
	return &Hub{broker: broker, boards: boards, origins: origins}
}

// ServeBoard streams the events of one board. Only the board's owner may
// subscribe.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	boardID, err := uuid.Parse(chi.URLParam(r, "boardID"))
	if err != nil {
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	if err := h.boards.CheckAccess(r.Context(), userID, boardID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "board not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			log.Error().Err(err).Stringer("board_id", boardID).Msg("websocket board lookup")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	h.stream(w, r, redisstore.BoardChannel(boardID))
}

// ServeUser streams the caller's notices and auth state changes.
func (h *Hub) ServeUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	h.stream(w, r, redisstore.UserChannel(userID))
}

func (h *Hub) stream(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients never send data; CloseRead handles control frames and cancels
	// ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.broker.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Str("channel", channel).Msg("websocket write")
				return
			}
		}
	}
}
