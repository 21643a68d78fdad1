// Package database handles opening and migrating the accounts database.
//
// Per-domain repositories live in subpackages; the credential store used by
// the auth workflows is in database/accounts.
package database
