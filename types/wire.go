package types

import "encoding/json"

const (
	WireEventMessage        = "message"
	WireEventMessageDeleted = "message_deleted"
	WireEventRoomDeleted    = "room_deleted"
)

// JSON-serialized WebsocketMessage is what is actually sent via the Websocket connection of a room feed
type WebsocketMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewWebsocketMessage wraps data as the payload of event.
func NewWebsocketMessage(event string, data interface{}) (*WebsocketMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &WebsocketMessage{Event: event, Data: raw}, nil
}
