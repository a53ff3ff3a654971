package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common store errors
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Species is a single catalogue record. Optional attributes are empty
// strings when the source data has no value for them.
type Species struct {
	ID             int64  `json:"id"`
	SpeciesName    string `json:"species_name"`
	ScientificName string `json:"scientific_name"`
	SpeciesType    string `json:"species_type"`
	OriginStatus   string `json:"origin_status"`
	Predator       string `json:"predator"`
	Prey           string `json:"prey"`
	Status         string `json:"status"`
	Family         string `json:"family"`
	Numbers        string `json:"numbers"`
	ImageURL       string `json:"image_url,omitempty"`
}

// User is a registered account
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Store provides access to the species catalogue and user accounts
type Store interface {
	// ListSpecies returns every species record, in no guaranteed order
	ListSpecies(ctx context.Context) ([]Species, error)

	// ListSpeciesOrderedByName returns up to limit records ordered by
	// species name ascending. A non-positive limit returns all records.
	ListSpeciesOrderedByName(ctx context.Context, limit int) ([]Species, error)

	// GetSpecies returns a single record by ID
	GetSpecies(ctx context.Context, id int64) (*Species, error)

	// CountSpecies returns the total number of catalogue records
	CountSpecies(ctx context.Context) (int64, error)

	// InsertSpecies adds a record and returns its assigned ID
	InsertSpecies(ctx context.Context, sp *Species) (int64, error)

	// CreateUser stores a new account with an already-hashed password
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)

	// GetUserByEmail returns the account for an email address
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// CountUsers returns the number of registered accounts
	CountUsers(ctx context.Context) (int64, error)

	// Ping verifies the underlying database connection
	Ping(ctx context.Context) error

	// Close releases the database connection
	Close() error
}

// Config holds database connection settings
type Config struct {
	// Driver selects the backend: "sqlite" or "postgres"
	Driver string `yaml:"driver"`

	// SQLitePath is the database file; ":memory:" runs fully in memory
	SQLitePath string `yaml:"sqlite_path"`

	PostgresURL string `yaml:"postgres_url"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DefaultConfig returns sensible storage defaults
func DefaultConfig() Config {
	return Config{
		Driver:          "sqlite",
		SQLitePath:      "wildlife.db",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Open creates a store for the configured driver
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(cfg)
	case "postgres":
		return OpenPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
