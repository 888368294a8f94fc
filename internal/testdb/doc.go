// Package testdb provides helpers for integration tests that need a PostgreSQL
// database. Tests using it skip themselves unless DATABASE_URL or
// SMARTEXTRACT_TEST_DB_URL is set.
package testdb
