// Package stores provides the persistence layer for VM records. The SQLite
// implementation uses WAL mode so every committed mutation survives process
// termination, with schema managed through embedded migrations.
package stores
