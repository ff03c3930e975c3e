package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driving"
)

// mockProcessor implements driving.Processor for testing.
type mockProcessor struct {
	settled int
	err     error
}

func (m *mockProcessor) HandleNotification(_ context.Context, _ driving.Notification) error {
	return m.err
}

func (m *mockProcessor) ProcessUnread(_ context.Context) (int, error) {
	return m.settled, m.err
}

func (m *mockProcessor) ProcessMessage(_ context.Context, _ string) (*domain.ProcessedMessage, error) {
	return nil, m.err
}

func setupProcessTest(p *mockProcessor) func() {
	oldProcessor := processorSvc
	processorSvc = p
	return func() {
		processorSvc = oldProcessor
	}
}

func TestProcessCmd_Use(t *testing.T) {
	assert.Equal(t, "process", processCmd.Use)
}

func TestProcessCmd_ReportsSettledCount(t *testing.T) {
	cleanup := setupProcessTest(&mockProcessor{settled: 3})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Processed 3 message(s).")
}

func TestProcessCmd_EmptyInbox(t *testing.T) {
	cleanup := setupProcessTest(&mockProcessor{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No unread messages to process.")
}

func TestProcessCmd_PropagatesError(t *testing.T) {
	cleanup := setupProcessTest(&mockProcessor{err: errors.New("list unread: 503")})
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"process"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorContains(t, err, "list unread")
}
