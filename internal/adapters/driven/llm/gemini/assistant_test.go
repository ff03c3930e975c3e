package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// mockGenerator returns queued responses, failing errs[i] times first.
type mockGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (m *mockGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	idx := m.calls
	m.calls++
	if text, ok := parts[0].(genai.Text); ok {
		m.prompts = append(m.prompts, string(text))
	}
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	response := ""
	if idx < len(m.responses) {
		response = m.responses[idx]
	}
	return textResponse(response), nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}}},
		},
	}
}

// mockPrompts returns canned templates with positional placeholders.
type mockPrompts struct {
	templates map[string]string
	err       error
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if t, ok := m.templates[name]; ok {
		return t, nil
	}
	return "prompt: %s", nil
}

func newTestAssistant(classifier, generation *mockGenerator) *Assistant {
	return &Assistant{
		classifier: classifier,
		generation: generation,
		prompts: &mockPrompts{templates: map[string]string{
			"classify":    "classify %s / %s",
			"intent":      "intent %s",
			"plan_search": "plan %s",
			"evaluate":    "evaluate %s / %s",
			"reply":       "reply %s / %s / %s",
		}},
		sleep: func(time.Duration) {},
	}
}

func TestClassify(t *testing.T) {
	classifier := &mockGenerator{responses: []string{" SPAM \n"}}
	a := newTestAssistant(classifier, &mockGenerator{})

	got, err := a.Classify(context.Background(), "Win big", "click here")
	require.NoError(t, err)
	assert.Equal(t, domain.ClassificationSpam, got)
	assert.Equal(t, "classify Win big / click here", classifier.prompts[0])
}

func TestClassifyUnexpectedDefaultsToProcess(t *testing.T) {
	a := newTestAssistant(&mockGenerator{responses: []string{"MAYBE"}}, &mockGenerator{})

	got, err := a.Classify(context.Background(), "subject", "body")
	require.NoError(t, err)
	assert.Equal(t, domain.ClassificationProcess, got)
}

func TestClassifyRetriesThenSucceeds(t *testing.T) {
	classifier := &mockGenerator{
		errs:      []error{errors.New("503"), errors.New("503"), nil},
		responses: []string{"", "", "PROCESS"},
	}
	a := newTestAssistant(classifier, &mockGenerator{})

	got, err := a.Classify(context.Background(), "subject", "body")
	require.NoError(t, err)
	assert.Equal(t, domain.ClassificationProcess, got)
	assert.Equal(t, 3, classifier.calls)
}

func TestClassifyExhaustsRetries(t *testing.T) {
	boom := errors.New("503 overloaded")
	classifier := &mockGenerator{errs: []error{boom, boom, boom}}
	a := newTestAssistant(classifier, &mockGenerator{})

	_, err := a.Classify(context.Background(), "subject", "body")
	assert.ErrorIs(t, err, domain.ErrAssistantUnavailable)
	assert.Equal(t, maxRetries, classifier.calls)
}

func TestClassifyEmptyResponseIsUnavailable(t *testing.T) {
	a := newTestAssistant(&mockGenerator{responses: []string{""}}, &mockGenerator{})

	_, err := a.Classify(context.Background(), "subject", "body")
	assert.ErrorIs(t, err, domain.ErrAssistantUnavailable)
}

func TestClassifyIntent(t *testing.T) {
	a := newTestAssistant(&mockGenerator{responses: []string{"FAQ"}}, &mockGenerator{})

	got, err := a.ClassifyIntent(context.Background(), "what is your return policy?")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentFAQ, got)
}

func TestClassifyIntentAmbiguous(t *testing.T) {
	a := newTestAssistant(&mockGenerator{responses: []string{"unsure"}}, &mockGenerator{})

	_, err := a.ClassifyIntent(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClassifyIntentEmptyText(t *testing.T) {
	a := newTestAssistant(&mockGenerator{}, &mockGenerator{})

	_, err := a.ClassifyIntent(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrEmptyBody)
}

func TestPlanSearch(t *testing.T) {
	generation := &mockGenerator{responses: []string{
		"```json\n{\"q\": \"vintage camera\", \"filter\": [\"price:[10..100]\"], \"limit\": \"50\"}\n```",
	}}
	a := newTestAssistant(&mockGenerator{}, generation)

	query, err := a.PlanSearch(context.Background(), "looking for a vintage camera under $100")
	require.NoError(t, err)
	assert.Equal(t, "vintage camera", query.Keywords)
	assert.Equal(t, []string{"price:[10..100]"}, []string(query.Filters))
	assert.Equal(t, 50, query.Limit)
}

func TestPlanSearchNoKeywords(t *testing.T) {
	a := newTestAssistant(&mockGenerator{}, &mockGenerator{responses: []string{"{}"}})

	_, err := a.PlanSearch(context.Background(), "thanks for the great service!")
	assert.ErrorIs(t, err, domain.ErrNoSearchQuery)
}

func TestPlanSearchEmptyBody(t *testing.T) {
	a := newTestAssistant(&mockGenerator{}, &mockGenerator{})

	_, err := a.PlanSearch(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyBody)
}

func TestEvaluateListings(t *testing.T) {
	listings := []domain.Listing{{Title: "Camera", Price: "45.00", Currency: "USD"}}

	generation := &mockGenerator{responses: []string{"CÓ. Các sản phẩm phù hợp với yêu cầu."}}
	a := newTestAssistant(&mockGenerator{}, generation)

	sufficient, err := a.EvaluateListings(context.Background(), "do you have cameras?", listings)
	require.NoError(t, err)
	assert.True(t, sufficient)
	assert.Contains(t, generation.prompts[0], "Tiêu đề: Camera")
	assert.Contains(t, generation.prompts[0], "Giá: 45.00 USD")
}

func TestEvaluateListingsInsufficient(t *testing.T) {
	listings := []domain.Listing{{Title: "Camera"}}
	a := newTestAssistant(&mockGenerator{}, &mockGenerator{responses: []string{"KHÔNG. Không liên quan."}})

	sufficient, err := a.EvaluateListings(context.Background(), "body", listings)
	require.NoError(t, err)
	assert.False(t, sufficient)
}

func TestEvaluateListingsEmpty(t *testing.T) {
	a := newTestAssistant(&mockGenerator{}, &mockGenerator{})

	sufficient, err := a.EvaluateListings(context.Background(), "body", nil)
	require.NoError(t, err)
	assert.False(t, sufficient)
}

func TestDraftReply(t *testing.T) {
	listings := []domain.Listing{{Title: "Camera", WebURL: "https://ebay.com/itm/1"}}
	generation := &mockGenerator{responses: []string{"Kính gửi quý khách,\n..."}}
	a := newTestAssistant(&mockGenerator{}, generation)

	reply, err := a.DraftReply(context.Background(), "Camera?", "do you have cameras?", listings)
	require.NoError(t, err)
	assert.Equal(t, "Kính gửi quý khách,\n...", reply)
	assert.Contains(t, generation.prompts[0], "https://ebay.com/itm/1")
}

func TestDraftReplyNoListingsFallsBack(t *testing.T) {
	generation := &mockGenerator{}
	a := newTestAssistant(&mockGenerator{}, generation)

	reply, err := a.DraftReply(context.Background(), "subject", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
	assert.Zero(t, generation.calls)
}

func TestNewAssistantRequiresKey(t *testing.T) {
	_, err := NewAssistant(context.Background(), Config{}, &mockPrompts{})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
