package repositories

import (
	"context"

	"github.com/HannahMarsh/onionnet/config"
	"github.com/HannahMarsh/onionnet/internal/domain/interfaces"
	"github.com/pkg/errors"
)

// OpenNodeRepository returns the directory store selected by store.Kind.
func OpenNodeRepository(ctx context.Context, store config.Store) (interfaces.NodeRepository, error) {
	switch store.Kind {
	case "", "memory":
		return NewNodeRepository(), nil
	case "badger":
		return NewBadgerNodeRepository(store.Path)
	case "postgres":
		return NewPostgresNodeRepository(ctx, store.DSN, store.Table)
	default:
		return nil, errors.Errorf("unknown directory store %q", store.Kind)
	}
}

// OpenMessageRepository returns the mailbox selected by mailbox.Kind.
func OpenMessageRepository(ctx context.Context, mailbox config.Mailbox) (interfaces.MessageRepository, error) {
	switch mailbox.Kind {
	case "", "memory":
		return NewMessageRepository(), nil
	case "redis":
		return NewRedisMessageRepository(ctx, mailbox.RedisAddr, mailbox.RedisDB)
	default:
		return nil, errors.Errorf("unknown mailbox %q", mailbox.Kind)
	}
}
