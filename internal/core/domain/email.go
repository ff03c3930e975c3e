package domain

import "strings"

// Email is an inbound customer email fetched from the mailbox.
type Email struct {
	// ID is the provider-assigned message ID.
	ID string
	// ThreadID groups the message with its conversation.
	ThreadID string
	// Sender is the raw From header, e.g. `Jane Doe <jane@example.com>`.
	Sender string
	// Subject is the decoded Subject header.
	Subject string
	// Body is the extracted text body. Plain text is preferred over
	// HTML; empty when no textual part could be extracted.
	Body string
	// MessageIDHeader is the RFC 5322 Message-ID header, required for
	// threading replies via In-Reply-To/References.
	MessageIDHeader string
}

// SenderAddress returns the bare email address from the Sender header,
// stripping any display name.
func (e *Email) SenderAddress() string {
	return ExtractAddress(e.Sender)
}

// CanReply reports whether the email carries everything needed to send a
// threaded reply.
func (e *Email) CanReply() bool {
	return e.Sender != "" && e.MessageIDHeader != ""
}

// ReplySubject builds the subject line for a reply, defaulting when the
// original had none.
func (e *Email) ReplySubject() string {
	subject := e.Subject
	if subject == "" {
		subject = "Your Inquiry"
	}
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// ExtractAddress extracts the bare address from a `Name <addr>` header
// value. Returns the input unchanged when no angle brackets are present.
func ExtractAddress(header string) string {
	start := strings.LastIndex(header, "<")
	end := strings.LastIndex(header, ">")
	if start >= 0 && end > start {
		return strings.TrimSpace(header[start+1 : end])
	}
	return strings.TrimSpace(header)
}
