// Package httputil provides shared HTTP plumbing for the wildlife service:
// JSON response writers, query and form parsing helpers, and the middleware
// chain (request IDs, structured request logging, panic recovery).
//
// Handlers across the service use these helpers so that error payloads and
// log fields stay consistent regardless of which package serves the request.
package httputil
