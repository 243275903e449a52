package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Assist asks a language model to pick a category for events the rule
// classifier is uncertain about. It is strictly advisory: confident
// rule results are never overridden, and any API failure leaves the
// rule result untouched.
type Assist struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewAssist creates an LLM assist backed by the OpenAI chat API
func NewAssist(apiKey, model string) (*Assist, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Assist{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: 30 * time.Second,
	}, nil
}

// Refine re-classifies an uncertain result. The returned result keeps
// the rule category unless the model answers with a valid taxonomy
// category.
func (a *Assist) Refine(ctx context.Context, name, description string, ruleResult Result) Result {
	if !ruleResult.IsUncertain() {
		return ruleResult
	}

	category, err := a.suggest(ctx, name, description)
	if err != nil || category == "" {
		return ruleResult
	}

	return Result{
		Category:     category,
		Confidence:   0.6,
		Reason:       fmt.Sprintf("llm suggestion (rule result was %q at %.2f)", ruleResult.Category, ruleResult.Confidence),
		Alternatives: ruleResult.Alternatives,
	}
}

func (a *Assist) suggest(ctx context.Context, name, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Classify this French cultural event into exactly one category among: %s.\n"+
			"Answer with the category slug only.\n\nName: %s\nDescription: %s",
		strings.Join(Categories, ", "), name, description,
	)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You classify French cultural events. Answer with a single lowercase category slug.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	for _, category := range Categories {
		if answer == category {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", answer)
}
