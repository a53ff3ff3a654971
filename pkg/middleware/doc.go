// Package middleware provides request-scoped concerns for the HTTP surface:
// optional session resolution and rate limiting. Two rate limiter variants
// share the same keying (user email when logged in, client IP otherwise), an
// in-memory token bucket for single instances and a Redis counter window for
// multi-instance deployments.
package middleware
