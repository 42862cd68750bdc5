// Package store defines the persistence boundary for card sets.
// BlobStore abstracts a key-value backend holding opaque blobs, and
// CardSetRepository keeps the whole card set collection as one JSON array
// under a single key, so business rules stay independent of the database.
package store
