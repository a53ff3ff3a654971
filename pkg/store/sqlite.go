package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS species (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_species_name ON species(species_name);
`

// SQLiteStore implements Store backed by a SQLite database file
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if necessary bootstraps) a SQLite-backed store
func OpenSQLite(cfg Config) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if cfg.SQLitePath == ":memory:" || strings.Contains(cfg.SQLitePath, "mode=memory") {
		// Each pooled connection would get its own in-memory database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying connection for health checks
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

const speciesColumns = `id, species_name,
	COALESCE(scientific_name, ''), COALESCE(species_type, ''),
	COALESCE(origin_status, ''), COALESCE(predator, ''), COALESCE(prey, ''),
	COALESCE(status, ''), COALESCE(family, ''), COALESCE(numbers, ''),
	COALESCE(image_url, '')`

// scanSpecies reads one species row in speciesColumns order
func scanSpecies(row interface{ Scan(...interface{}) error }) (Species, error) {
	var sp Species
	err := row.Scan(&sp.ID, &sp.SpeciesName, &sp.ScientificName, &sp.SpeciesType,
		&sp.OriginStatus, &sp.Predator, &sp.Prey, &sp.Status, &sp.Family,
		&sp.Numbers, &sp.ImageURL)
	return sp, err
}

func collectSpecies(rows *sql.Rows) ([]Species, error) {
	defer rows.Close()

	var out []Species
	for rows.Next() {
		sp, err := scanSpecies(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan species: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// ListSpecies returns every species record
func (s *SQLiteStore) ListSpecies(ctx context.Context) ([]Species, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+speciesColumns+` FROM species`)
	if err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	return collectSpecies(rows)
}

// ListSpeciesOrderedByName returns up to limit records by name ascending
func (s *SQLiteStore) ListSpeciesOrderedByName(ctx context.Context, limit int) ([]Species, error) {
	query := `SELECT ` + speciesColumns + ` FROM species ORDER BY LOWER(species_name) ASC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	return collectSpecies(rows)
}

// GetSpecies returns a single record by ID
func (s *SQLiteStore) GetSpecies(ctx context.Context, id int64) (*Species, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+speciesColumns+` FROM species WHERE id = ?`, id)
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
func (s *SQLiteStore) CountSpecies(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM species`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count species: %w", err)
	}
	return count, nil
}

// InsertSpecies adds a record and returns its assigned ID
func (s *SQLiteStore) InsertSpecies(ctx context.Context, sp *Species) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO species (species_name, scientific_name, species_type, origin_status,
			predator, prey, status, family, numbers, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sp.SpeciesName, sp.ScientificName, sp.SpeciesType, sp.OriginStatus,
		sp.Predator, sp.Prey, sp.Status, sp.Family, sp.Numbers, sp.ImageURL)
	if err != nil {
		return 0, fmt.Errorf("failed to insert species: %w", err)
	}
	return res.LastInsertId()
}

// CreateUser stores a new account
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, passwordHash, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	return &User{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// GetUserByEmail returns the account for an email address
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email).
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
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Ping verifies the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
