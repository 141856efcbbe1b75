// Package store defines the persistence interfaces consumed by the API
// layer, together with the sentinel errors and listing criteria shared by
// all implementations. Concrete implementations live under
// internal/platform/postgres.
package store
