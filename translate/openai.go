package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/minios-linux/catsync/langmeta"
)

// SystemPrompt instructs chat models to behave like a translation API.
// {{sourceLang}}, {{targetLang}} and {{context}} are substituted per request.
const SystemPrompt = `You are a professional translator localizing an online shop catalog (product names, descriptions and sizes).

Translate the user message from {{sourceLang}} to {{targetLang}}.
Context: {{context}}

RULES:
- Return ONLY the translated text, no quotes, notes or explanations.
- Preserve ALL HTML tags and attributes exactly as-is.
- Keep brand names, dish names that are proper nouns, units and numbers unchanged.
- Keep the tone short and appetizing, matching the source length.`

// OpenAI translates with a chat completion model.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI returns an OpenAI-compatible translator.
func NewOpenAI(prov Provider) *OpenAI {
	cfg := openai.DefaultConfig(prov.APIKey)
	if prov.BaseURL != "" {
		cfg.BaseURL = prov.BaseURL
	}
	model := prov.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

// Translate sends one string as a chat completion.
func (o *OpenAI) Translate(ctx context.Context, req Request) (string, error) {
	hint := req.Context
	if hint == "" {
		hint = DefaultContext
	}
	prompt := strings.NewReplacer(
		"{{sourceLang}}", langmeta.EnglishName(req.SourceLang),
		"{{targetLang}}", langmeta.EnglishName(req.TargetLang),
		"{{context}}", hint,
	).Replace(SystemPrompt)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoTranslation
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errNoTranslation
	}
	return text, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &StatusError{Code: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &StatusError{Code: reqErr.HTTPStatusCode, Message: truncate(msg, 500)}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransportError{Err: fmt.Errorf("openai: %w", err)}
}
