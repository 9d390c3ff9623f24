package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveredMessage is a plaintext that reached a user's mailbox
type DeliveredMessage struct {
	ID         uuid.UUID `json:"id"`
	UserID     int       `json:"userId"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// NewDeliveredMessage creates a new message record
func NewDeliveredMessage(userID int, body string) *DeliveredMessage {
	return &DeliveredMessage{
		ID:         uuid.New(),
		UserID:     userID,
		Body:       body,
		ReceivedAt: time.Now(),
	}
}
