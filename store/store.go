// Package store selects and constructs a concrete activity store backend
// at runtime from a driver tag.
package store

import (
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/grove"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/store/file"
	"github.com/xraph/scribe/store/memory"
	"github.com/xraph/scribe/store/mongo"
	"github.com/xraph/scribe/store/postgres"
	"github.com/xraph/scribe/store/redis"
	"github.com/xraph/scribe/store/sqlite"
)

// Driver identifies a storage backend implementation.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverMongo    Driver = "mongo"
	DriverRedis    Driver = "redis"
	DriverFile     Driver = "file"
	DriverMemory   Driver = "memory"
)

// ErrUnknownDriver is returned by Open for an unrecognized driver tag.
var ErrUnknownDriver = errors.New("scribe: unknown store driver")

// Config carries the backend selection plus the per-driver connection
// material. Database-backed drivers receive an already-opened handle; this
// package never dials.
type Config struct {
	Driver Driver

	// DB is the grove handle for the postgres, sqlite, and mongo drivers.
	DB *grove.DB

	// Redis configures the redis driver.
	Redis       *goredis.Options
	RedisPrefix string

	// File configures the file driver.
	File file.Config
}

// Open resolves the configured driver to a concrete store. The returned
// store still needs Initialize before use.
func Open(cfg Config) (activity.Store, error) {
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DB == nil {
			return nil, errors.New("scribe: postgres driver requires an opened grove DB")
		}
		return postgres.New(cfg.DB), nil
	case DriverSQLite:
		if cfg.DB == nil {
			return nil, errors.New("scribe: sqlite driver requires an opened grove DB")
		}
		return sqlite.New(cfg.DB), nil
	case DriverMongo:
		if cfg.DB == nil {
			return nil, errors.New("scribe: mongo driver requires an opened grove DB")
		}
		return mongo.New(cfg.DB), nil
	case DriverRedis:
		if cfg.Redis == nil {
			return nil, errors.New("scribe: redis driver requires client options")
		}
		return redis.New(goredis.NewClient(cfg.Redis), cfg.RedisPrefix), nil
	case DriverFile:
		return file.New(cfg.File), nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
