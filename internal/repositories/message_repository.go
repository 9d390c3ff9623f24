package repositories

import (
	"context"
	"sync"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
)

// MessageRepositoryImpl is an in-memory mailbox
type MessageRepositoryImpl struct {
	mu       sync.RWMutex
	messages map[int][]models.DeliveredMessage
}

// NewMessageRepository creates a new instance of MessageRepositoryImpl
func NewMessageRepository() *MessageRepositoryImpl {
	return &MessageRepositoryImpl{
		messages: make(map[int][]models.DeliveredMessage),
	}
}

func (repo *MessageRepositoryImpl) SaveMessage(_ context.Context, msg *models.DeliveredMessage) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.messages[msg.UserID] = append(repo.messages[msg.UserID], *msg)
	return nil
}

func (repo *MessageRepositoryImpl) LastMessage(_ context.Context, userID int) (*models.DeliveredMessage, bool, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	msgs := repo.messages[userID]
	if len(msgs) == 0 {
		return nil, false, nil
	}
	last := msgs[len(msgs)-1]
	return &last, true, nil
}

func (repo *MessageRepositoryImpl) ListMessages(_ context.Context, userID int) ([]models.DeliveredMessage, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return append([]models.DeliveredMessage{}, repo.messages[userID]...), nil
}

func (repo *MessageRepositoryImpl) Close() error {
	return nil
}
