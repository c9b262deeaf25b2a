// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces. Card and queue payloads live in JSONB columns;
// scheduling state is one row per (user, deck, card) so Ensure can lean
// on ON CONFLICT DO NOTHING, and session updates take a row lock via
// SELECT ... FOR UPDATE.
package postgres
