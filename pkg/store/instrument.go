package store

import (
	"context"
	"time"
)

// QueryObserver receives the outcome of every store query. Satisfied by
// observability.Metrics.
type QueryObserver interface {
	ObserveStoreQuery(operation, backend string, duration time.Duration, err error)
}

// WithMetrics wraps a store so every query is reported to the observer,
// labelled by operation name and backend
func WithMetrics(next Store, backend string, observer QueryObserver) Store {
	return &instrumentedStore{
		next:     next,
		backend:  backend,
		observer: observer,
	}
}

type instrumentedStore struct {
	next     Store
	backend  string
	observer QueryObserver
}

func (s *instrumentedStore) observe(operation string, start time.Time, err error) {
	s.observer.ObserveStoreQuery(operation, s.backend, time.Since(start), err)
}

func (s *instrumentedStore) ListSpecies(ctx context.Context) ([]Species, error) {
	start := time.Now()
	records, err := s.next.ListSpecies(ctx)
	s.observe("list_species", start, err)
	return records, err
}

func (s *instrumentedStore) ListSpeciesOrderedByName(ctx context.Context, limit int) ([]Species, error) {
	start := time.Now()
	records, err := s.next.ListSpeciesOrderedByName(ctx, limit)
	s.observe("list_species_ordered", start, err)
	return records, err
}

func (s *instrumentedStore) GetSpecies(ctx context.Context, id int64) (*Species, error) {
	start := time.Now()
	sp, err := s.next.GetSpecies(ctx, id)
	s.observe("get_species", start, err)
	return sp, err
}

func (s *instrumentedStore) CountSpecies(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := s.next.CountSpecies(ctx)
	s.observe("count_species", start, err)
	return count, err
}

func (s *instrumentedStore) InsertSpecies(ctx context.Context, sp *Species) (int64, error) {
	start := time.Now()
	id, err := s.next.InsertSpecies(ctx, sp)
	s.observe("insert_species", start, err)
	return id, err
}

func (s *instrumentedStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	start := time.Now()
	user, err := s.next.CreateUser(ctx, email, passwordHash)
	s.observe("create_user", start, err)
	return user, err
}

func (s *instrumentedStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	user, err := s.next.GetUserByEmail(ctx, email)
	s.observe("get_user", start, err)
	return user, err
}

func (s *instrumentedStore) CountUsers(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := s.next.CountUsers(ctx)
	s.observe("count_users", start, err)
	return count, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
