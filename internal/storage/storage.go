package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Package storage provides the durable key/timestamp store backing rate-limit state.

// Store persists one timestamp per key. Values survive process restarts for
// every backend except "none".
type Store interface {
	Close() error
	Get(key string) (time.Time, bool, error)
	Put(key string, ts time.Time) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	// Retention is how long a timestamp is kept before cleanup purges it.
	Retention       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRetention       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// Supported backend names.
const (
	TypeNone   = "none"
	TypeBBolt  = "bbolt"
	TypeSQLite = "sqlite"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	case TypeSQLite:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		return openSQLite(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// encodeTimestamp renders ts as a decimal unix-millisecond string.
func encodeTimestamp(ts time.Time) string {
	return strconv.FormatInt(ts.UnixMilli(), 10)
}

func decodeTimestamp(value string) (time.Time, bool) {
	ms, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

type noopStore struct{}

func (noopStore) Close() error                        { return nil }
func (noopStore) Get(string) (time.Time, bool, error) { return time.Time{}, false, nil }
func (noopStore) Put(string, time.Time) error         { return nil }
