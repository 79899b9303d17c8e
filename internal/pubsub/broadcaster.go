package pubsub

import (
	"context"

	"vaultScope/internal/model"
)

// Broadcaster publishes newly created records to subscribers.
type Broadcaster interface {
	Publish(ctx context.Context, records []model.Entity) error
	Health(ctx context.Context) error
}
