package notify

import (
	"context"
	"encoding/json"

	kafka "github.com/segmentio/kafka-go"

	"lucky-wheel/internal/config/configs"
	"lucky-wheel/internal/core/port"
)

// KafkaNotifier writes payout events to a kafka topic, keyed by user so
// per-user ordering is preserved for the chat consumer.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(cfg configs.Kafka) *KafkaNotifier {
	return &KafkaNotifier{writer: &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}}
}

func (n *KafkaNotifier) PayoutWon(ctx context.Context, ev port.PayoutEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.UserID),
		Value: payload,
	})
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
