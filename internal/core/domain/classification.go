package domain

import "strings"

// Classification is the triage verdict for an inbound email.
type Classification string

const (
	// ClassificationSpam marks unsolicited or irrelevant mail that is
	// archived without a reply.
	ClassificationSpam Classification = "SPAM"
	// ClassificationProcess marks a legitimate customer email that
	// enters the reply pipeline.
	ClassificationProcess Classification = "PROCESS"
)

// ParseClassification maps raw model output to a Classification.
// Unexpected output defaults to PROCESS so legitimate mail is never
// silently dropped; ok is false when the default was applied.
func ParseClassification(raw string) (c Classification, ok bool) {
	switch Classification(strings.ToUpper(strings.TrimSpace(raw))) {
	case ClassificationSpam:
		return ClassificationSpam, true
	case ClassificationProcess:
		return ClassificationProcess, true
	default:
		return ClassificationProcess, false
	}
}

// Intent is the finer-grained purpose of a customer query.
type Intent string

const (
	// IntentFAQ covers general questions about policies and services.
	IntentFAQ Intent = "faq"
	// IntentProduct covers questions about specific products.
	IntentProduct Intent = "product"
)

// ParseIntent maps raw model output to an Intent.
// Returns ok=false for unrecognised output.
func ParseIntent(raw string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentFAQ:
		return IntentFAQ, true
	case IntentProduct:
		return IntentProduct, true
	default:
		return "", false
	}
}
