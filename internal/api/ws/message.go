package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/auth"
	"github.com/gosuda/kanban/internal/board"
	redisstore "github.com/gosuda/kanban/internal/store/redis"
)

type MessageType string

const (
	MessageNotice MessageType = "notice"
	MessageAuth   MessageType = "auth"
)

// Message is the envelope sent on a user's socket.
type Message struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// Publisher puts board events, notices and auth changes on the broker for
// the hubs of every server instance to deliver.
type Publisher struct {
	broker Broker
}

func NewPublisher(broker Broker) *Publisher {
	return &Publisher{broker: broker}
}

// PublishBoardEvent sends ev to everyone watching its board. Board sockets
// receive the event object as is.
func (p *Publisher) PublishBoardEvent(ctx context.Context, ev board.Event) error {
	return p.publish(ctx, redisstore.BoardChannel(ev.BoardID), ev)
}

// Notify sends a notice to every socket the user has open.
func (p *Publisher) Notify(ctx context.Context, userID uuid.UUID, n board.Notice) error {
	return p.publish(ctx, redisstore.UserChannel(userID), Message{Type: MessageNotice, Data: n})
}

// PublishAuthChange tells the user's sockets that one of their sessions
// started, refreshed or ended.
func (p *Publisher) PublishAuthChange(ctx context.Context, userID uuid.UUID, change auth.StateChange) error {
	return p.publish(ctx, redisstore.UserChannel(userID), Message{Type: MessageAuth, Data: change})
}

func (p *Publisher) publish(ctx context.Context, channel string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ws.Publisher.publish: marshal: %w", err)
	}
	if err := p.broker.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("ws.Publisher.publish: %w", err)
	}
	return nil
}
