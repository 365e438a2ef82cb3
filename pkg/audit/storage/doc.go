// Package storage provides audit.Storage backends: an in-memory store for
// development and tests, and a SQLite store for single-node deployments.
package storage
