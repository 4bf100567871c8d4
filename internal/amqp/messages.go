package amqp

import (
	"encoding/json"
	"time"
)

// ShareMessage carries a rendered share summary through the queue. The
// worker delivers it to whatever share channel is configured; the
// producing side never blocks on delivery.
type ShareMessage struct {
	Content   string    `json:"content"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
}

func NewShareMessage(content, subject string) *ShareMessage {
	return &ShareMessage{
		Content:   content,
		Subject:   subject,
		Timestamp: time.Now(),
	}
}

func (m *ShareMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ShareMessageFromJSON(data []byte) (*ShareMessage, error) {
	var msg ShareMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
