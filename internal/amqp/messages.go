package amqp

import (
	"encoding/json"
	"time"
)

// BudgetSavedMessage announces a stored budget. The worker reloads the budget
// and its records by ID.
type BudgetSavedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetSavedMessage(id int64) *BudgetSavedMessage {
	return &BudgetSavedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *BudgetSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetSavedMessageFromJSON(data []byte) (*BudgetSavedMessage, error) {
	var msg BudgetSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
