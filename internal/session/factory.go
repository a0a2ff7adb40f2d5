package session

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Persistent tier drivers.
const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

// PersistentConfig selects the durable tier implementation.
type PersistentConfig struct {
	Driver   string
	FilePath string
}

// Dependencies captures external handles required by certain drivers.
type Dependencies struct {
	Redis *redis.Client
}

// NewPersistent creates the durable session tier based on the
// provided configuration.
func NewPersistent(cfg PersistentConfig, deps Dependencies) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFile
	}

	switch driver {
	case DriverFile:
		path := cfg.FilePath
		if path == "" {
			path = "session.json"
		}
		return NewFileStore(path)
	case DriverRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("session: redis driver requires a client handle")
		}
		return NewRedisStore(deps.Redis), nil
	default:
		return nil, fmt.Errorf("session: unsupported store driver: %s", driver)
	}
}
