// Package sqlite persists the processed-message ledger and the Gmail
// watch state in a local SQLite database with embedded migrations.
package sqlite
