// internal/workers/assistant/parse-command/config.go
package parsecommand

import "time"

type Config struct {
	Timeout time.Duration
}

// LoadConfig returns the worker defaults. The manager overrides the timeout
// when the workers section of the configuration sets one.
func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
