// Package domain contains the core business entities for the automated
// email support service: inbound emails, triage classifications,
// marketplace listings and the processing ledger.
//
// This package has no dependencies on adapters or external services.
package domain
