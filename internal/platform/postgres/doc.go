// Package postgres provides the PostgreSQL implementation of store.BlobStore.
// It handles opening the pgx-backed connection pool, applying the schema,
// and mapping driver errors onto the store error taxonomy.
package postgres
