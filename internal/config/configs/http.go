package configs

import "fmt"

// HTTP defines configuration for the HTTP server. Host is empty by
// default, binding all interfaces.
type HTTP struct {
	// Host is the interface the server binds to.
	Host string `env:"HOST"`
	// Port is the TCP port the HTTP server will listen on. Defaults to 8080.
	Port uint16 `env:"PORT" envDefault:"8080"`
}

// Addr returns the host:port listen address.
func (c HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
