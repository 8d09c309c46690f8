// Package client contains client-side building blocks for notekeeper.
//
// # Overview
//
// The package provides:
//  1. A concrete HTTP implementation of the sync transport (see HTTPClient)
//     that manages a session token obtained from the account identifier and
//     verifier, transparently re-authenticates on expiry, and maps response
//     statuses to sentinel errors.
//  2. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions surface as the sentinel errors of internal/common and can
// be matched with errors.Is: common.ErrTransport, common.ErrUnauthorized.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
