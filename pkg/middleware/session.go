package middleware

import (
	"errors"
	"net/http"

	"github.com/korimako/wildlife/pkg/auth"
	"github.com/korimako/wildlife/pkg/contextkeys"
	"github.com/korimako/wildlife/pkg/observability"
)

// SessionMiddleware resolves the session cookie into a request-scoped user.
// Authentication is optional: requests without a valid session pass through
// anonymously, pages decide for themselves what to show.
type SessionMiddleware struct {
	manager *auth.Manager
	logger  *observability.Logger
}

// NewSessionMiddleware creates session-resolution middleware
func NewSessionMiddleware(manager *auth.Manager, logger *observability.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		manager: manager,
		logger:  logger,
	}
}

// Handler attaches the session's user email to the request context
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := m.manager.Current(r.Context(), r)
		if err != nil {
			if !errors.Is(err, auth.ErrNoSession) {
				m.logger.WithError(err).Warn("session lookup failed, continuing anonymously")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := contextkeys.WithUser(r.Context(), email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
