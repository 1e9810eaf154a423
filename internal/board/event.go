package board

import "github.com/google/uuid"

type EventType string

const (
	EventBoardUpdated     EventType = "board_updated"
	EventBoardDeleted     EventType = "board_deleted"
	EventBoardReloaded    EventType = "board_reloaded"
	EventColumnCreated    EventType = "column_created"
	EventColumnUpdated    EventType = "column_updated"
	EventColumnDeleted    EventType = "column_deleted"
	EventCardCreated      EventType = "card_created"
	EventCardUpdated      EventType = "card_updated"
	EventCardDeleted      EventType = "card_deleted"
	EventTagCreated       EventType = "tag_created"
	EventTagUpdated       EventType = "tag_updated"
	EventTagDeleted       EventType = "tag_deleted"
	EventCardTagged       EventType = "card_tagged"
	EventCardUntagged     EventType = "card_untagged"
	EventColumnsReordered EventType = "columns_reordered"
	EventCardsReordered   EventType = "cards_reordered"
	EventCardMoved        EventType = "card_moved"
)

// Event is broadcast on a board's channel after a successful mutation so
// that other sessions viewing the board can refresh.
type Event struct {
	Type    EventType `json:"type"`
	BoardID uuid.UUID `json:"board_id"`
	Data    any       `json:"data,omitempty"`
}

// CardTagData is the payload of card_tagged and card_untagged events.
type CardTagData struct {
	CardID uuid.UUID `json:"card_id"`
	TagID  uuid.UUID `json:"tag_id"`
}

// DeletedData is the payload of *_deleted events.
type DeletedData struct {
	ID uuid.UUID `json:"id"`
}
