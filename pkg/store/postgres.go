package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS species (
	id BIGSERIAL PRIMARY KEY,
	species_name TEXT NOT NULL,
	scientific_name TEXT,
	species_type TEXT,
	origin_status TEXT,
	predator TEXT,
	prey TEXT,
	status TEXT,
	family TEXT,
	numbers TEXT,
	image_url TEXT
);

CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_species_name ON species(species_name);
`

// uniqueViolation is the postgres error code for unique constraint failures
const uniqueViolation = "23505"

// PostgresStore implements Store backed by PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a PostgreSQL-backed store and bootstraps the schema
func OpenPostgres(cfg Config) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// DB exposes the underlying connection for health checks
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// ListSpecies returns every species record
func (s *PostgresStore) ListSpecies(ctx context.Context) ([]Species, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+speciesColumns+` FROM species`)
	if err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	return collectSpecies(rows)
}

// ListSpeciesOrderedByName returns up to limit records by name ascending
func (s *PostgresStore) ListSpeciesOrderedByName(ctx context.Context, limit int) ([]Species, error) {
	query := `SELECT ` + speciesColumns + ` FROM species ORDER BY LOWER(species_name) ASC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	return collectSpecies(rows)
}

// GetSpecies returns a single record by ID
func (s *PostgresStore) GetSpecies(ctx context.Context, id int64) (*Species, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+speciesColumns+` FROM species WHERE id = $1`, id)
	sp, err := scanSpecies(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get species %d: %w", id, err)
	}
	return &sp, nil
}

// CountSpecies returns the number of catalogue records
func (s *PostgresStore) CountSpecies(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM species`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count species: %w", err)
	}
	return count, nil
}

// InsertSpecies adds a record and returns its assigned ID
func (s *PostgresStore) InsertSpecies(ctx context.Context, sp *Species) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO species (species_name, scientific_name, species_type, origin_status,
			predator, prey, status, family, numbers, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		sp.SpeciesName, sp.ScientificName, sp.SpeciesType, sp.OriginStatus,
		sp.Predator, sp.Prey, sp.Status, sp.Family, sp.Numbers, sp.ImageURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert species: %w", err)
	}
	return id, nil
}

// CreateUser stores a new account
func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at`,
		email, passwordHash).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// GetUserByEmail returns the account for an email address
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CountUsers returns the number of registered accounts
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Ping verifies the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
