package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"display name form", "Jane Doe <jane@example.com>", "jane@example.com"},
		{"bare address", "jane@example.com", "jane@example.com"},
		{"extra whitespace", "  Jane <jane@example.com> ", "jane@example.com"},
		{"angle brackets only", "<support@shop.vn>", "support@shop.vn"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAddress(tt.header))
		})
	}
}

func TestReplySubject(t *testing.T) {
	e := &Email{Subject: "Hỏi về laptop ThinkPad"}
	assert.Equal(t, "Re: Hỏi về laptop ThinkPad", e.ReplySubject())

	e = &Email{Subject: ""}
	assert.Equal(t, "Re: Your Inquiry", e.ReplySubject())

	// Already a reply: no double prefix.
	e = &Email{Subject: "RE: order status"}
	assert.Equal(t, "RE: order status", e.ReplySubject())
}

func TestCanReply(t *testing.T) {
	e := &Email{Sender: "a@b.com", MessageIDHeader: "<id@mail>"}
	assert.True(t, e.CanReply())

	assert.False(t, (&Email{Sender: "a@b.com"}).CanReply())
	assert.False(t, (&Email{MessageIDHeader: "<id@mail>"}).CanReply())
}

func TestSenderAddress(t *testing.T) {
	e := &Email{Sender: "Khách Hàng <khach@example.vn>"}
	assert.Equal(t, "khach@example.vn", e.SenderAddress())
}
