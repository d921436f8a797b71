package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const DefaultQueueKey = "gosshub:notifications"

// QueueNotifier pushes JSON-encoded intents onto a Redis list consumed by an
// external mailer.
type QueueNotifier struct {
	client *redis.Client
	key    string
}

func NewQueueNotifier(client *redis.Client, key string) *QueueNotifier {
	if key == "" {
		key = DefaultQueueKey
	}
	return &QueueNotifier{client: client, key: key}
}

func (q *QueueNotifier) Notify(ctx context.Context, intent Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, q.key, payload).Err()
}
