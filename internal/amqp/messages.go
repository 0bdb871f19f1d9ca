package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Change operations carried by RecordChangedMessage.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// RecordChangedMessage announces that one of a user's records changed.
// It carries identifiers only; consumers re-read the store for contents.
type RecordChangedMessage struct {
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(kind, op, userID, id string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Kind:      kind,
		Op:        op,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordChangedMessage) Validate() error {
	switch {
	case m.Kind == "":
		return errors.New("message kind is empty")
	case m.UserID == "":
		return errors.New("message user id is empty")
	}
	switch m.Op {
	case OpCreated, OpUpdated, OpDeleted:
		return nil
	}
	return errors.New("unknown message op " + m.Op)
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes and validates a message body.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
