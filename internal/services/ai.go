package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/pkg/logger"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

type SuggestionRequest struct {
	Prompt  string `json:"prompt" binding:"required,notblank"`
	Type    string `json:"type" binding:"required,oneof=location casting scheduling script general"`
	Context any    `json:"context"`
}

type AnalyzeScriptRequest struct {
	Script string `json:"script" binding:"required,notblank"`
}

type SuggestionResult struct {
	Prompt      string    `json:"prompt"`
	Type        string    `json:"type"`
	Suggestions []any     `json:"suggestions"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// AIService fronts the configured suggestion provider.
type AIService struct {
	provider SuggestionProvider
}

func NewAIService(provider SuggestionProvider) *AIService {
	return &AIService{provider: provider}
}

// NewSuggestionProvider picks the canned table unless a model provider is configured.
func NewSuggestionProvider(cfg config.AIConfig) SuggestionProvider {
	switch cfg.Provider {
	case "", "canned", "mock":
		return NewCannedProvider(cfg.Delay)
	default:
		logger.Infof("[AI] Using provider: %s, model: %s, baseURL: %s", cfg.Provider, cfg.Model, cfg.BaseURL)
		return NewLLMProvider(cfg)
	}
}

func (s *AIService) Suggest(ctx context.Context, req *SuggestionRequest) (*SuggestionResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if req.Context != nil {
		if extra, err := json.Marshal(req.Context); err == nil {
			prompt += "\n\nProject context: " + string(extra)
		}
	}

	suggestions, err := s.provider.Generate(ctx, prompt, req.Type)
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}
	suggestionsServed.WithLabelValues(s.provider.Name(), req.Type).Inc()

	return &SuggestionResult{
		Prompt:      req.Prompt,
		Type:        req.Type,
		Suggestions: suggestions,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *AIService) AnalyzeScript(ctx context.Context, req *AnalyzeScriptRequest) (*ScriptAnalysis, error) {
	analysis, err := s.provider.AnalyzeScript(ctx, req.Script)
	if err != nil {
		return nil, fmt.Errorf("analyze script: %w", err)
	}
	return analysis, nil
}

// LLMProvider asks a chat model for suggestions and falls back to the canned
// table when the call fails or the answer is not a JSON array.
type LLMProvider struct {
	cfg config.AIConfig
}

func NewLLMProvider(cfg config.AIConfig) *LLMProvider {
	return &LLMProvider{cfg: cfg}
}

func (p *LLMProvider) Name() string {
	return p.cfg.Provider
}

func (p *LLMProvider) Generate(ctx context.Context, prompt, category string) ([]any, error) {
	content, err := p.callLLM(ctx, suggestionPrompt(prompt, category))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warnf("[AI] %s call failed, using canned suggestions: %v", p.cfg.Provider, err)
		return cannedFor(category), nil
	}

	items, err := parseSuggestions(content)
	if err != nil {
		logger.Warnf("[AI] %s answer not usable, using canned suggestions: %v", p.cfg.Provider, err)
		return cannedFor(category), nil
	}
	return items, nil
}

// AnalyzeScript stays deterministic for every provider.
func (p *LLMProvider) AnalyzeScript(ctx context.Context, script string) (*ScriptAnalysis, error) {
	return analyzeScript(script), nil
}

func suggestionPrompt(prompt, category string) string {
	var b strings.Builder
	b.WriteString("You are an assistant for a video production team.\n")
	fmt.Fprintf(&b, "Give exactly two %s suggestions for the request below.\n", category)
	b.WriteString("Answer with a JSON array of objects only, no prose. ")
	switch category {
	case SuggestLocation:
		b.WriteString(`Each object has "title", "description", "pros", "cons" and "cost".`)
	case SuggestCasting:
		b.WriteString(`Each object has "role", "description", "requirements" and "budget".`)
	case SuggestScheduling:
		b.WriteString(`Each object has "phase", "duration", "tasks" and "timeline".`)
	case SuggestScript:
		b.WriteString(`Each object has "metric", "value" and "note".`)
	default:
		b.WriteString(`Each object has "suggestion", "category" and "impact".`)
	}
	b.WriteString("\n\nRequest: ")
	b.WriteString(prompt)
	return b.String()
}

// parseSuggestions pulls the outermost JSON array out of a model answer,
// tolerating code fences and surrounding prose.
func parseSuggestions(content string) ([]any, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in answer")
	}

	var items []any
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty suggestion list")
	}
	return items, nil
}

func (p *LLMProvider) callLLM(ctx context.Context, prompt string) (string, error) {
	switch p.cfg.Provider {
	case "anthropic":
		return p.callAnthropic(ctx, prompt)
	case "ollama":
		return p.callOllama(ctx, prompt)
	case "gemini":
		return p.callGemini(ctx, prompt)
	case "azure":
		return p.callAzure(ctx, prompt)
	default:
		// openai and other OpenAI-compatible services
		return p.callOpenAI(ctx, prompt)
	}
}

func (p *LLMProvider) temperature() float32 {
	if p.cfg.Temperature > 0 {
		return float32(p.cfg.Temperature)
	}
	return 0.7
}

// callOpenAI handles OpenAI and OpenAI-compatible APIs (including custom endpoints)
func (p *LLMProvider) callOpenAI(ctx context.Context, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(p.cfg.APIKey)
	if p.cfg.BaseURL != "" {
		clientConfig.BaseURL = p.cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	model := p.cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.temperature(),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	logger.Debugf("[AI] OpenAI response length: %d chars", len(content))
	return content, nil
}

// callAzure expects BaseURL https://{resource-name}.openai.azure.com; Model is the deployment name.
func (p *LLMProvider) callAzure(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClientWithConfig(openai.DefaultAzureConfig(p.cfg.APIKey, p.cfg.BaseURL))

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.temperature(),
	})
	if err != nil {
		return "", fmt.Errorf("Azure OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from Azure OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *LLMProvider) callAnthropic(ctx context.Context, prompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(p.cfg.APIKey),
	)

	maxTokens := int64(p.cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 2048
	}

	model := p.cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}

func (p *LLMProvider) callOllama(ctx context.Context, prompt string) (string, error) {
	baseURL := p.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := p.cfg.Model
	if model == "" {
		model = "llama3"
	}

	stream := false
	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model:    model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Format:   json.RawMessage(`"json"`),
		Options: map[string]interface{}{
			"temperature": p.temperature(),
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	return content.String(), nil
}

func (p *LLMProvider) callGemini(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: p.cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini client error: %w", err)
	}

	model := p.cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.Text(), nil
}
