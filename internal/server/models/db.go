// Package models defines the storefront records persisted in PostgreSQL, the
// projections kept in the cache, and the analytics events written to the
// document store.
package models
