// Package google provides shared infrastructure for Google API
// connectors: OAuth credential handling, error mapping and rate
// limiting.
package google
