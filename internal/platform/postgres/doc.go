// Package postgres stores the task history in PostgreSQL. It is used instead of
// the in-memory store when database.url is configured, so task outcomes survive
// restarts of the serve command.
//
// Connections use the pgx database/sql driver; the schema is managed by goose
// from migrations embedded in the binary.
package postgres
