// Package repositories implements SQLite persistence for credentials and transfer jobs.
//
// Key Implementations:
//   - [CredentialRepository] : OAuth tokens keyed by (session, platform), used by the auth manager
//   - [JobRepository] : transfer job snapshots for the sqlite status backend
//
// Sequence numbers give jobs a stable submission order independent of their UUIDs. They come
// from per-table counters in dedicated sequence tables, incremented in the inserting transaction.
package repositories
