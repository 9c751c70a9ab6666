package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"smartexpense/internal/core"
)

// MessageVersion is bumped when the wire shape of ExpenseEventMessage changes.
const MessageVersion = 1

// ExpenseEventMessage carries one committed ledger change. Deleted events
// carry no expense payload.
type ExpenseEventMessage struct {
	Version   int               `json:"version"`
	Event     core.ExpenseEvent `json:"event"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewExpenseEventMessage wraps ev for publishing.
func NewExpenseEventMessage(ev core.ExpenseEvent) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Version:   MessageVersion,
		Event:     ev,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON decodes and sanity-checks a message body.
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Version != MessageVersion {
		return nil, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	switch msg.Event.Type {
	case core.EventExpenseCreated, core.EventExpenseUpdated:
		if msg.Event.Expense == nil {
			return nil, fmt.Errorf("%s event without expense payload", msg.Event.Type)
		}
	case core.EventExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Event.Type)
	}
	if msg.Event.ExpenseID == "" || msg.Event.Owner == "" {
		return nil, fmt.Errorf("event without expense id or owner")
	}
	return &msg, nil
}

// RoutingKey is the key a message is published under: one per event type,
// all bound to the same queue.
func (m *ExpenseEventMessage) RoutingKey() string {
	return string(m.Event.Type)
}
