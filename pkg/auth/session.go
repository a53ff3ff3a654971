package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrNoSession is returned when a request carries no valid session
var ErrNoSession = errors.New("no active session")

// SessionStore persists session tokens mapped to user emails
type SessionStore interface {
	Set(ctx context.Context, token, email string) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// redisSessionStore keeps sessions in Redis so they survive restarts and
// are shared across instances
type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

func (s *redisSessionStore) Set(ctx context.Context, token, email string) error {
	if err := s.client.Set(ctx, sessionKey(token), email, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Get(ctx context.Context, token string) (string, error) {
	email, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return email, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// memorySessionStore keeps sessions in a bounded expiring LRU, for
// single-instance deployments without Redis
type memorySessionStore struct {
	cache *expirable.LRU[string, string]
}

// NewMemorySessionStore creates an in-process session store capped at
// maxSessions entries with per-entry TTL
func NewMemorySessionStore(maxSessions int, ttl time.Duration) SessionStore {
	return &memorySessionStore{
		cache: expirable.NewLRU[string, string](maxSessions, nil, ttl),
	}
}

func (s *memorySessionStore) Set(_ context.Context, token, email string) error {
	s.cache.Add(token, email)
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, token string) (string, error) {
	email, ok := s.cache.Get(token)
	if !ok {
		return "", ErrNoSession
	}
	return email, nil
}

func (s *memorySessionStore) Delete(_ context.Context, token string) error {
	s.cache.Remove(token)
	return nil
}

// Manager issues and resolves cookie-based sessions
type Manager struct {
	store      SessionStore
	cookieName string
	ttl        time.Duration
}

// NewManager creates a session manager over a session store
func NewManager(store SessionStore, cookieName string, ttl time.Duration) *Manager {
	return &Manager{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// Issue creates a session for a user and sets the session cookie
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, email string) (string, error) {
	token := uuid.NewString()
	if err := m.store.Set(ctx, token, email); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Current resolves the request's session cookie to a user email
func (m *Manager) Current(ctx context.Context, r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", ErrNoSession
	}
	return m.store.Get(ctx, cookie.Value)
}

// Clear deletes the request's session and expires the cookie
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		if err := m.store.Delete(ctx, cookie.Value); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
