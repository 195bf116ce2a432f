// Package wexcommerce contains the database bootstrap for the
// wexcommerce backend: connection lifecycle management and idempotent
// reconciliation of collections, indexes and catalog seed data.
//
// The runnable entrypoint lives in cmd/dbinit.
package wexcommerce
