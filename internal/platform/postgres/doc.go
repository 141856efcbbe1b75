// Package postgres contains the PostgreSQL implementations of the store
// interfaces, using database/sql with the pgx stdlib driver. All queries are
// bounded by a per-operation timeout and driver errors are translated to the
// store's sentinel errors before they reach callers.
package postgres
