// Package realtime contains the Nexus websocket gateway and the
// presence/delivery core: the connection registry, the presence
// broadcaster, and the message relay.
package realtime

import "encoding/json"

// Event names pushed to clients.
const (
	// EventPresence carries the full set of online user ids.
	EventPresence = "presence"
	// EventNewMessage carries one persisted message record.
	EventNewMessage = "newMessage"
)

// Event is the wire envelope for server-to-client pushes.
// The payload is opaque structured data handed to a generic push primitive.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// NewPresenceEvent builds a presence snapshot event.
func NewPresenceEvent(userIDs []string) Event {
	if userIDs == nil {
		userIDs = []string{}
	}
	data, _ := json.Marshal(userIDs)
	return Event{Name: EventPresence, Data: data}
}

// NewMessageEvent builds a message delivery event from a persisted record.
func NewMessageEvent(record any) (Event, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: EventNewMessage, Data: data}, nil
}
