// Package driven defines the interfaces the core services depend on:
// mailbox access, the language-model assistant, the marketplace search,
// the support-chat notifier and persistence.
//
// Adapters and connectors implement these interfaces; the core never
// imports an adapter package.
package driven
