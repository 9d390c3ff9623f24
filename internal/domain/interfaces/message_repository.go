package interfaces

import (
	"context"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
)

// MessageRepository defines the methods for a user's mailbox
type MessageRepository interface {
	SaveMessage(ctx context.Context, msg *models.DeliveredMessage) error
	LastMessage(ctx context.Context, userID int) (*models.DeliveredMessage, bool, error)
	ListMessages(ctx context.Context, userID int) ([]models.DeliveredMessage, error)
	Close() error
}
