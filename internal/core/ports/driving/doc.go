// Package driving defines the interfaces through which the outside
// world (CLI, Pub/Sub listener) drives the core services.
package driving
