package postgres

import "time"

// Config holds Postgres connection settings
type Config struct {
	// DSN is a libpq-style connection string or postgres:// URL
	DSN string

	// AutoMigrate creates the tables on startup when true
	AutoMigrate bool

	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	// ConnectRetries is how many times opening the database is retried
	ConnectRetries int
	RetryInterval  time.Duration
}

// DefaultConfig returns sensible defaults for Postgres configuration
func DefaultConfig() Config {
	return Config{
		AutoMigrate:     true,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnectRetries:  3,
		RetryInterval:   5 * time.Second,
	}
}
