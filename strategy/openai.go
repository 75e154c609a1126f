package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/warp/business-admin/generic"
)

const identitySystemPrompt = `You are a strategy consultant. From the company profile the user sends,
write a strategic identity. Reply with a single JSON object and nothing else:
{"mission": string, "vision": string, "values": [string], "purpose": string}`

const indicatorsSystemPrompt = `You are a strategy consultant. From the strategic identity the user sends,
propose balanced scorecard indicators. Reply with a single JSON object and nothing else:
{"indicators": [{"name": string, "description": string,
"perspective": "financial"|"customer"|"process"|"learning",
"target": string, "unit": string, "frequency": "monthly"|"quarterly"|"yearly"}]}`

// OpenAIGenerator asks a chat completion model for drafts.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator. baseURL may be empty to use the
// default endpoint.
func NewOpenAIGenerator(apiKey, model, baseURL string) *OpenAIGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIGenerator{client: openai.NewClient(opts...), model: model}
}

func (g *OpenAIGenerator) GenerateIdentity(ctx context.Context, in IdentityInput) (IdentityDraft, error) {
	var out IdentityDraft
	if err := g.complete(ctx, identitySystemPrompt, in, &out); err != nil {
		return IdentityDraft{}, err
	}
	return out, nil
}

func (g *OpenAIGenerator) GenerateIndicators(ctx context.Context, in IndicatorInput) ([]IndicatorDraft, error) {
	in.Count = in.count()
	var out struct {
		Indicators []IndicatorDraft `json:"indicators"`
	}
	if err := g.complete(ctx, indicatorsSystemPrompt, in, &out); err != nil {
		return nil, err
	}
	return out.Indicators, nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, system string, in, out any) error {
	user, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode prompt: %w", err)
	}
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(string(user)),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: openai: %v", generic.ErrGeneratorUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: openai: no choices returned", generic.ErrGeneratorUnavailable)
	}
	return decodeDraft(resp.Choices[0].Message.Content, out)
}
