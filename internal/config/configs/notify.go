package configs

// Notify selects how payout events reach the chat/notification service.
// Supported backends are "log" (default), "redis" and "kafka".
type Notify struct {
	Backend string `env:"BACKEND" envDefault:"log"`
}
