package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HannahMarsh/onionnet/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisMessageRepository keeps each user's mailbox in a redis list.
type RedisMessageRepository struct {
	client *redis.Client
}

func NewRedisMessageRepository(ctx context.Context, addr string, db int) (*RedisMessageRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to reach redis at %s", addr)
	}
	return &RedisMessageRepository{client: client}, nil
}

func mailboxKey(userID int) string {
	return fmt.Sprintf("mailbox:%d", userID)
}

func (repo *RedisMessageRepository) SaveMessage(ctx context.Context, msg *models.DeliveredMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to encode message")
	}
	err = repo.client.RPush(ctx, mailboxKey(msg.UserID), data).Err()
	return errors.Wrapf(err, "failed to save message for user %d", msg.UserID)
}

func (repo *RedisMessageRepository) LastMessage(ctx context.Context, userID int) (*models.DeliveredMessage, bool, error) {
	data, err := repo.client.LIndex(ctx, mailboxKey(userID), -1).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to read mailbox of user %d", userID)
	}
	var msg models.DeliveredMessage
	if err = json.Unmarshal(data, &msg); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode message")
	}
	return &msg, true, nil
}

func (repo *RedisMessageRepository) ListMessages(ctx context.Context, userID int) ([]models.DeliveredMessage, error) {
	entries, err := repo.client.LRange(ctx, mailboxKey(userID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mailbox of user %d", userID)
	}
	msgs := make([]models.DeliveredMessage, 0, len(entries))
	for _, entry := range entries {
		var msg models.DeliveredMessage
		if err = json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, errors.Wrap(err, "failed to decode message")
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (repo *RedisMessageRepository) Close() error {
	return repo.client.Close()
}
