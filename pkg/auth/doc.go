// Package auth handles account credentials and cookie sessions: bcrypt
// password hashing, registration input validation, and a session manager
// with interchangeable Redis and in-memory token stores.
package auth
