// Package gemini implements the assistant port over the Gemini API:
// email triage, intent classification, search planning, listing
// evaluation and reply drafting.
package gemini
