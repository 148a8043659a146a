package configs

// Redis configures the redis pub/sub notification backend.
type Redis struct {
	Addr     string `env:"ADDRESS" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// Channel is the pub/sub channel payout events are published to.
	Channel string `env:"CHANNEL" envDefault:"wheel.payouts"`
}
