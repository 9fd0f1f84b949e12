package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultOpenAIModel    = "gpt-4.1-mini"
	defaultAnthropicModel = anthropic.ModelClaudeSonnet4_20250514

	analyzerTemperature = 0.2
	analyzerMaxTokens   = 8000
)

// Caller abstracts the external generative model. It is invoked exactly
// once per analysis; retries are a user action, not a transport policy.
type Caller interface {
	Generate(ctx context.Context, system, user string) (string, Usage, error)
}

// --- OpenAI ---

type OpenAIChat interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...openaioption.RequestOption) (*openai.ChatCompletion, error)
}

type OpenAICaller struct {
	chat  OpenAIChat
	model string
}

func NewOpenAICallerFromEnv() (*OpenAICaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not configured")
	}
	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = defaultOpenAIModel
	}
	c := openai.NewClient(openaioption.WithAPIKey(apiKey))
	return &OpenAICaller{chat: &c.Chat.Completions, model: model}, nil
}

func (o *OpenAICaller) Generate(ctx context.Context, system, user string) (string, Usage, error) {
	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(analyzerTemperature),
		MaxTokens:   openai.Int(analyzerMaxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", Usage{}, err
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, errors.New("no choices in model response")
	}
	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

// --- Anthropic ---

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...anthropicoption.RequestOption) (*anthropic.Message, error)
}

type AnthropicCaller struct {
	messages AnthropicMessager
}

func NewAnthropicCallerFromEnv() (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(anthropicoption.WithAPIKey(apiKey))
	return &AnthropicCaller{messages: &c.Messages}, nil
}

func (a *AnthropicCaller) Generate(ctx context.Context, system, user string) (string, Usage, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       defaultAnthropicModel,
		MaxTokens:   analyzerMaxTokens,
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
		Temperature: anthropic.Float(analyzerTemperature),
	})
	if err != nil {
		return "", Usage{}, err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	usage := Usage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
	return sb.String(), usage, nil
}

// NewCallerFromEnv picks the analyzer provider. ANALYZER_PROVIDER selects
// openai (default) or anthropic.
func NewCallerFromEnv() (Caller, error) {
	switch strings.TrimSpace(strings.ToLower(os.Getenv("ANALYZER_PROVIDER"))) {
	case "", "openai":
		return NewOpenAICallerFromEnv()
	case "anthropic":
		return NewAnthropicCallerFromEnv()
	default:
		return nil, fmt.Errorf("unknown ANALYZER_PROVIDER %q", os.Getenv("ANALYZER_PROVIDER"))
	}
}

// Analyzer runs one protocol invocation end to end: prompt construction,
// a single model call, fence stripping and strict schema validation.
type Analyzer struct {
	caller Caller
}

func NewAnalyzer(caller Caller) *Analyzer {
	return &Analyzer{caller: caller}
}

// Analyze sends the day records to the external model and returns the
// validated result body plus token usage. A malformed response is an
// error; the raw body is never passed through half-checked.
func (a *Analyzer) Analyze(ctx context.Context, records []DayRecord, v Variant) (json.RawMessage, Usage, error) {
	if len(records) == 0 {
		return nil, Usage{}, errors.New("no day records to analyze")
	}
	start, end := PeriodOf(records)

	tracer := otel.Tracer("analysis")
	ctx, span := tracer.Start(ctx, "analyzer.invoke")
	span.SetAttributes(
		attribute.String("analysis.variant", string(v)),
		attribute.Int("analysis.days", len(records)),
	)
	defer span.End()

	user, err := UserPrompt(records, start, end)
	if err != nil {
		return nil, Usage{}, err
	}

	raw, usage, err := a.caller.Generate(ctx, SystemPrompt(v, start, end), user)
	if err != nil {
		return nil, usage, fmt.Errorf("analyzer call failed: %w", err)
	}

	body := StripCodeFences(raw)
	if body == "" {
		return nil, usage, errors.New("analyzer returned an empty response")
	}
	if err := ValidateResult([]byte(body), v); err != nil {
		return nil, usage, err
	}
	return json.RawMessage(body), usage, nil
}
