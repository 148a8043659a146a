package notify

import (
	"context"
	"fmt"
	"log/slog"

	"lucky-wheel/internal/config/configs"
	"lucky-wheel/internal/core/port"
)

// New returns the notifier selected by cfg.Backend. The log backend is
// the default and needs no external service.
func New(cfg configs.Notify, redisCfg configs.Redis, kafkaCfg configs.Kafka, logger *slog.Logger) (port.Notifier, error) {
	switch cfg.Backend {
	case "", "log":
		return NewLogNotifier(logger), nil
	case "redis":
		return NewRedisNotifier(redisCfg), nil
	case "kafka":
		return NewKafkaNotifier(kafkaCfg), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}

// LogNotifier writes payout events to the structured log only. Useful in
// development and as a safe fallback when no broker is deployed.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PayoutWon(ctx context.Context, ev port.PayoutEvent) error {
	n.logger.Info("payout won",
		slog.String("spin", ev.SpinToken),
		slog.String("user", ev.UserID),
		slog.String("category", string(ev.Category)),
		slog.String("label", ev.Label),
		slog.Int64("cost", ev.Cost))
	return nil
}
