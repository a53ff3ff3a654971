// Package store provides persistence for the wildlife catalogue: species
// records and user accounts. Two backends implement the Store interface,
// SQLite for single-node deployments and development, and PostgreSQL for
// production. Both bootstrap their schema on open.
package store
