package configs

// Kafka configures the kafka notification backend.
type Kafka struct {
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"wheel.payouts"`
}
