package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// mockLedger implements driven.ProcessedStore for testing.
type mockLedger struct {
	records []domain.ProcessedMessage
	err     error
}

func (m *mockLedger) Get(_ context.Context, _ string) (*domain.ProcessedMessage, error) {
	return nil, m.err
}

func (m *mockLedger) Record(_ context.Context, _ *domain.ProcessedMessage) error {
	return m.err
}

func (m *mockLedger) Recent(_ context.Context, limit int) ([]domain.ProcessedMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.records) {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func setupHistoryTest(ledger *mockLedger) func() {
	oldLedger := ledgerSvc
	ledgerSvc = ledger
	return func() {
		ledgerSvc = oldLedger
	}
}

func TestHistoryCmd_Use(t *testing.T) {
	assert.Equal(t, "history", historyCmd.Use)
}

func TestHistoryCmd_ListsEntries(t *testing.T) {
	cleanup := setupHistoryTest(&mockLedger{records: []domain.ProcessedMessage{
		{
			MessageID:   "m2",
			Sender:      "jane@example.com",
			Subject:     "Order question",
			Outcome:     domain.OutcomeReplied,
			ProcessedAt: time.Date(2025, 6, 2, 10, 5, 0, 0, time.UTC),
		},
		{
			MessageID:   "m1",
			Sender:      "spam@example.com",
			Subject:     "You won!",
			Outcome:     domain.OutcomeSpam,
			ProcessedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		},
	}})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "OUTCOME")
	assert.Contains(t, out, "replied")
	assert.Contains(t, out, "jane@example.com")
	assert.Contains(t, out, "spam")
}

func TestHistoryCmd_ShowsFailureDetail(t *testing.T) {
	cleanup := setupHistoryTest(&mockLedger{records: []domain.ProcessedMessage{
		{
			MessageID:   "m1",
			Sender:      "jane@example.com",
			Subject:     "Order",
			Outcome:     domain.OutcomeFailed,
			Error:       "send reply: 503",
			ProcessedAt: time.Now(),
		},
	}})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "send reply: 503")
}

func TestHistoryCmd_Empty(t *testing.T) {
	cleanup := setupHistoryTest(&mockLedger{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No processed emails yet.")
}
