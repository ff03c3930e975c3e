package driven

// Prompt names used with PromptStore.Load.
const (
	// PromptClassify decides SPAM vs PROCESS.
	PromptClassify = "classify"
	// PromptIntent decides faq vs product.
	PromptIntent = "intent"
	// PromptPlanSearch derives eBay Browse API parameters.
	PromptPlanSearch = "plan_search"
	// PromptEvaluate judges listing relevance.
	PromptEvaluate = "evaluate"
	// PromptReply drafts the customer reply.
	PromptReply = "reply"
)

// PromptStore loads prompt templates by name.
// Implementations fall back to embedded defaults when a template is
// not customised.
type PromptStore interface {
	Load(name string) (string, error)
}
