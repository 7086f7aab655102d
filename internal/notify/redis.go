package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisStream = "orders"

// RedisNotifier appends order notifications to a Redis stream for a storefront worker to consume
type RedisNotifier struct {
	client *redis.Client
	stream string
}

func NewRedisNotifier(client *redis.Client, stream string) *RedisNotifier {
	return &RedisNotifier{
		client: client,
		stream: stream,
	}
}

func (n *RedisNotifier) Send(ctx context.Context, msg Message) error {
	err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"order_id": msg.OrderID,
			"subject":  msg.Subject,
			"from":     msg.From,
			"to":       msg.To,
			"body":     msg.Body,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd failed: %w", err)
	}
	return nil
}
