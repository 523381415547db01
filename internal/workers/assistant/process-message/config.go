// internal/workers/assistant/process-message/config.go
package processmessage

import "time"

type Config struct {
	Timeout time.Duration
}

// LoadConfig returns the worker defaults. The manager overrides the timeout
// when the workers section of the configuration sets one.
func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
