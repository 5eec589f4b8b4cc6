package amqp

import (
	"encoding/json"
	"time"
)

// ChargeFetchMessage asks the worker to fetch the current charges and post
// them for the given billing month.
type ChargeFetchMessage struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	// Announce controls whether the worker posts the rents-due board to the
	// chat after setting the charges.
	Announce  bool      `json:"announce"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChargeFetchMessage creates a fetch request for a billing month.
func NewChargeFetchMessage(year, month int, announce bool) *ChargeFetchMessage {
	return &ChargeFetchMessage{
		Year:      year,
		Month:     month,
		Announce:  announce,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChargeFetchMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChargeFetchMessageFromJSON creates a message from JSON bytes
func ChargeFetchMessageFromJSON(data []byte) (*ChargeFetchMessage, error) {
	var msg ChargeFetchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
