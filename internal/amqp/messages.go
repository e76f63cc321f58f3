package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AlertMessage carries one spending advisory to whoever listens on the queue.
type AlertMessage struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlertMessage stamps a fresh id and the current time.
func NewAlertMessage(level, message, source string) *AlertMessage {
	return &AlertMessage{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON creates a message from JSON bytes
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
