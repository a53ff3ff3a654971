// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the email of the logged-in user
	// Set by: middleware.SessionMiddleware (pkg/middleware/session.go)
	// Used by: page handlers, logger
	// Type: string
	UserKey Key = "user_email"

	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: Logger, request tracing
	// Type: string
	RequestIDKey Key = "request_id"

	// LoggerKey contains *observability.Logger
	// Set by: observability layer
	// Used by: Handlers that need structured logging with request context
	// Type: *observability.Logger
	LoggerKey Key = "logger"
)

// WithUser adds the logged-in user's email to the context
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, UserKey, email)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetUser retrieves the logged-in user's email from context, empty if anonymous
func GetUser(ctx context.Context) string {
	if email, ok := ctx.Value(UserKey).(string); ok {
		return email
	}
	return ""
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
