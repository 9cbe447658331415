package cache

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidTTL      = errors.New("ttl must not be negative")
	ErrInvalidShards   = errors.New("shard count must be between 1 and capacity")
	ErrInvalidEviction = errors.New("unknown eviction policy")
)

// ConfigError reports a construction parameter that was rejected.
// It unwraps to one of the ErrInvalid* sentinels.
type ConfigError struct {
	Field  string
	Value  any
	Reason error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid cache configuration for %s (%v): %v", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Reason
}

func newConfigError(field string, value any, reason error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
