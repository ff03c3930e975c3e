// Package services contains the core application services: the email
// triage pipeline and the watch renewal loop.
package services
