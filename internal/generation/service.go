package generation

import "context"

// #region types
// Result holds the output of one thinking-service call.
type Result struct {
	Text       string
	Insights   []string
	TokensUsed int
}

// Service is the external text-generation collaborator. The engine core only
// consumes its output; prompt construction and fallbacks on transient errors
// live with the caller.
type Service interface {
	Generate(ctx context.Context, prompt string, thinkingBudget, maxTokens int) (Result, error)
}

// #endregion types
