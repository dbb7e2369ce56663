// Package aggregates holds the persistence gateways for the counter and
// settings aggregates.
//
// Gateways compose the table-level repos from internal/data/repos and own the
// transaction boundary of every write. All write paths go through
// executeWrite so failures are mapped onto domain error codes and reported to
// Hooks in one place.
package aggregates
