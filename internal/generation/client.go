package generation

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// #region client-struct
// Client implements Service against any OpenAI-compatible chat endpoint.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a client for the given endpoint. baseURL may point at a
// local server; an empty apiKey is accepted for servers that ignore auth.
func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// #endregion client-struct

// #region generate
// Generate sends the prompt and returns generated text plus extracted
// insight lines. thinkingBudget is forwarded as the reasoning effort hint in
// the system message; maxTokens caps the completion.
func (c *Client) Generate(ctx context.Context, prompt string, thinkingBudget, maxTokens int) (Result, error) {
	system := fmt.Sprintf(
		"You are a creative thinking engine. Think for up to %d tokens before answering. "+
			"After your answer, list key insights, one per line, each starting with 'INSIGHT:'.",
		thinkingBudget,
	)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("generate: empty choices")
	}

	text, insights := splitInsights(resp.Choices[0].Message.Content)
	return Result{
		Text:       text,
		Insights:   insights,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// splitInsights separates INSIGHT: lines from the body text.
func splitInsights(content string) (string, []string) {
	var body []string
	var insights []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "INSIGHT:"); ok {
			if rest = strings.TrimSpace(rest); rest != "" {
				insights = append(insights, rest)
			}
			continue
		}
		body = append(body, line)
	}
	return strings.TrimSpace(strings.Join(body, "\n")), insights
}

// #endregion generate
