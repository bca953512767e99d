// Package env provides config values backed by environment variables.
package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/compressed-token-sdk/pkg/config"
	"github.com/code-payments/compressed-token-sdk/pkg/config/wrapper"
)

type variable struct {
	name string
}

// NewConfig returns a config reading the upper cased variable key. The
// variable is looked up on every Get, so a builder or indexer client picks
// up changes without being recreated.
func NewConfig(key string) config.Config {
	return &variable{
		name: strings.ToUpper(key),
	}
}

// Get implements Config.Get. Unset and blank variables have no value.
func (v *variable) Get(_ context.Context) (interface{}, error) {
	val, ok := os.LookupEnv(v.name)
	if !ok || len(strings.TrimSpace(val)) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(strings.TrimSpace(val)), nil
}

// Shutdown implements Config.Shutdown
func (v *variable) Shutdown() {
}

// NewUint64Config creates a env-based uint64 config
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

// NewStringConfig creates a env-based string config
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

// NewBoolConfig creates a env-based bool config
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

// NewDurationConfig creates a env-based duration config
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
