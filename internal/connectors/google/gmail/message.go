package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// ParseMessage extracts the fields the pipeline needs from a full-format
// Gmail message: sender, subject, the Message-ID header for threading,
// and the best available text body.
func ParseMessage(msg *gmail.Message) *domain.Email {
	email := &domain.Email{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
	}
	if msg.Payload == nil {
		return email
	}

	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "from":
			email.Sender = header.Value
		case "subject":
			email.Subject = header.Value
		case "message-id":
			email.MessageIDHeader = header.Value
		}
	}

	email.Body = extractBody(msg.Payload)
	return email
}

// extractBody walks the MIME tree preferring text/plain over text/html.
// Multipart containers (multipart/alternative, multipart/mixed) are
// traversed depth-first; the first plain part wins.
func extractBody(payload *gmail.MessagePart) string {
	plain, html := walkParts(payload)
	if plain != "" {
		return plain
	}
	return html
}

func walkParts(part *gmail.MessagePart) (plain, html string) {
	if part == nil {
		return "", ""
	}

	if part.Body != nil && part.Body.Data != "" {
		decoded := decodeBody(part.Body.Data)
		switch {
		case strings.HasPrefix(part.MimeType, "text/plain"):
			return decoded, ""
		case strings.HasPrefix(part.MimeType, "text/html"):
			html = decoded
		}
	}

	for _, child := range part.Parts {
		childPlain, childHTML := walkParts(child)
		if childPlain != "" {
			return childPlain, html
		}
		if html == "" {
			html = childHTML
		}
	}

	return "", html
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}

// BuildReply constructs the base64url-encoded RFC 2822 reply message.
// In-Reply-To and References point at the original Message-ID so mail
// clients thread the reply correctly.
func BuildReply(original *domain.Email, body string) (string, error) {
	if !original.CanReply() {
		return "", domain.ErrReplyNotThreadable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", original.SenderAddress())
	fmt.Fprintf(&b, "Subject: %s\r\n", original.ReplySubject())
	fmt.Fprintf(&b, "In-Reply-To: %s\r\n", original.MessageIDHeader)
	fmt.Fprintf(&b, "References: %s\r\n", original.MessageIDHeader)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}
