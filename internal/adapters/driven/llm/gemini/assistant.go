package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

var _ driven.Assistant = (*Assistant)(nil)

// DefaultModel is used for both classification and generation unless
// overridden.
const DefaultModel = "gemini-2.0-flash"

const (
	maxRetries   = 3
	initialDelay = 5 * time.Second
)

// Input truncation limits, in runes.
const (
	classifyBodyLimit = 2000
	intentTextLimit   = 1500
	planBodyLimit     = 2000
	evaluateBodyLimit = 1500
	contextLimit      = 4000
)

// generator is the slice of *genai.GenerativeModel the assistant uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Config holds Gemini assistant configuration.
type Config struct {
	// APIKey authenticates against the Gemini API.
	APIKey string
	// ClassificationModel handles the cheap yes/no decisions.
	ClassificationModel string
	// GenerationModel handles planning, evaluation and reply drafting.
	GenerationModel string
}

func (c Config) normalise() Config {
	if c.ClassificationModel == "" {
		c.ClassificationModel = DefaultModel
	}
	if c.GenerationModel == "" {
		c.GenerationModel = DefaultModel
	}
	return c
}

// Assistant implements the assistant port over the Gemini API.
// Transient API failures are retried with exponential backoff.
type Assistant struct {
	classifier generator
	generation generator
	prompts    driven.PromptStore
	client     *genai.Client

	sleep func(time.Duration)
}

// NewAssistant creates a Gemini-backed assistant.
func NewAssistant(ctx context.Context, config Config, prompts driven.PromptStore) (*Assistant, error) {
	config = config.normalise()
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini assistant: %w: API key required", domain.ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	logger.Info("gemini models initialised (classify: %s, generate: %s)", config.ClassificationModel, config.GenerationModel)

	return &Assistant{
		classifier: client.GenerativeModel(config.ClassificationModel),
		generation: client.GenerativeModel(config.GenerationModel),
		prompts:    prompts,
		client:     client,
		sleep:      time.Sleep,
	}, nil
}

// Close releases the underlying API client.
func (a *Assistant) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

// Classify decides whether an email is spam or a customer request.
// An answer outside the expected labels defaults to PROCESS so a
// confused model never silently discards customer mail.
func (a *Assistant) Classify(ctx context.Context, subject, body string) (domain.Classification, error) {
	prompt, err := a.prompt(driven.PromptClassify, subject, truncateRunes(body, classifyBodyLimit))
	if err != nil {
		return "", err
	}

	text, err := a.generate(ctx, a.classifier, prompt)
	if err != nil {
		return "", err
	}

	classification, ok := domain.ParseClassification(strings.ToUpper(strings.TrimSpace(text)))
	if !ok {
		logger.Warn("unexpected classification %q, defaulting to %s", text, classification)
	}
	logger.Info("email classified as %s", classification)
	return classification, nil
}

// ClassifyIntent decides whether a query is a general FAQ or about a
// specific product. An ambiguous answer is an error; the caller treats
// it as a product query.
func (a *Assistant) ClassifyIntent(ctx context.Context, text string) (domain.Intent, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyBody
	}

	prompt, err := a.prompt(driven.PromptIntent, truncateRunes(text, intentTextLimit))
	if err != nil {
		return "", err
	}

	answer, err := a.generate(ctx, a.classifier, prompt)
	if err != nil {
		return "", err
	}

	intent, ok := domain.ParseIntent(strings.ToLower(strings.TrimSpace(answer)))
	if !ok {
		return "", fmt.Errorf("ambiguous intent classification: %w: %q", domain.ErrInvalidInput, answer)
	}
	logger.Info("query intent classified as %s", intent)
	return intent, nil
}

// PlanSearch derives marketplace search parameters from the email body.
func (a *Assistant) PlanSearch(ctx context.Context, body string) (*domain.SearchQuery, error) {
	if strings.TrimSpace(body) == "" {
		return nil, domain.ErrEmptyBody
	}

	prompt, err := a.prompt(driven.PromptPlanSearch, truncateRunes(body, planBodyLimit))
	if err != nil {
		return nil, err
	}

	text, err := a.generate(ctx, a.generation, prompt)
	if err != nil {
		return nil, err
	}

	query, err := ParseSearchQuery(text)
	if err != nil {
		return nil, err
	}
	logger.Info("planned search: q=%q filters=%v", query.Keywords, query.Filters)
	return query, nil
}

// EvaluateListings judges whether the listings are relevant and
// sufficient to answer the email. The prompt asks for CÓ or KHÔNG;
// anything but an affirmative counts as insufficient.
func (a *Assistant) EvaluateListings(ctx context.Context, body string, listings []domain.Listing) (bool, error) {
	if len(listings) == 0 {
		return false, nil
	}

	prompt, err := a.prompt(driven.PromptEvaluate,
		truncateRunes(body, evaluateBodyLimit),
		truncateRunes(formatListings(listings), contextLimit))
	if err != nil {
		return false, err
	}

	answer, err := a.generate(ctx, a.generation, prompt)
	if err != nil {
		return false, err
	}

	sufficient := strings.HasPrefix(strings.ToUpper(strings.TrimSpace(answer)), "CÓ")
	if sufficient {
		logger.Info("listings evaluated as relevant and sufficient")
	} else {
		logger.Info("listings evaluated as insufficient: %s", truncateRunes(answer, 200))
	}
	return sufficient, nil
}

// fallbackReply is sent when a reply is requested with no listings.
const fallbackReply = "Cảm ơn bạn đã liên hệ. Hiện tại chúng tôi chưa tìm thấy thông tin cụ thể về yêu cầu của bạn. Đội ngũ hỗ trợ của chúng tôi sẽ xem xét và phản hồi sau."

// DraftReply composes the customer reply from the email and listings.
func (a *Assistant) DraftReply(ctx context.Context, subject, body string, listings []domain.Listing) (string, error) {
	if len(listings) == 0 {
		logger.Warn("drafting reply with no listings, using fallback")
		return fallbackReply, nil
	}

	prompt, err := a.prompt(driven.PromptReply,
		subject,
		truncateRunes(body, evaluateBodyLimit),
		truncateRunes(formatListings(listings), contextLimit))
	if err != nil {
		return "", err
	}

	text, err := a.generate(ctx, a.generation, prompt)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(text)
	if reply == "" {
		return "", fmt.Errorf("draft reply: %w: model returned empty text", domain.ErrAssistantUnavailable)
	}
	logger.Info("reply drafted (%d characters)", len(reply))
	return reply, nil
}

// prompt loads a template and fills in its placeholders.
func (a *Assistant) prompt(name string, args ...any) (string, error) {
	template, err := a.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return fmt.Sprintf(template, args...), nil
}

// generate calls the model with retry and exponential backoff, and
// extracts the text of the first candidate.
func (a *Assistant) generate(ctx context.Context, model generator, prompt string) (string, error) {
	delay := initialDelay
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		logger.Debug("calling gemini (attempt %d/%d)", attempt, maxRetries)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err == nil {
			text := responseText(resp)
			if text == "" {
				return "", fmt.Errorf("%w: empty or blocked response", domain.ErrAssistantUnavailable)
			}
			return text, nil
		}

		lastErr = err
		logger.Warn("gemini call failed (attempt %d/%d): %v", attempt, maxRetries, err)
		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		a.sleep(delay)
		delay *= 2
	}

	return "", fmt.Errorf("%w: %v", domain.ErrAssistantUnavailable, lastErr)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
