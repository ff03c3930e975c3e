// Package file provides file-based configuration: TOML settings with
// environment overrides, and user-editable LLM prompt templates with
// embedded defaults.
package file
