package notify

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"lucky-wheel/internal/config/configs"
	"lucky-wheel/internal/core/port"
)

// RedisNotifier publishes payout events to a redis pub/sub channel where
// the chat service picks them up. Delivery is fire-and-forget: no
// subscriber means the event is dropped, which is acceptable for this
// side channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(cfg configs.Redis) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisNotifier{client: client, channel: cfg.Channel}
}

func (n *RedisNotifier) PayoutWon(ctx context.Context, ev port.PayoutEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, payload).Err()
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
