package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/huangang/framewise/backend/internal/config"
)

func TestCannedProvider_LocationIgnoresPrompt(t *testing.T) {
	svc := NewAIService(NewCannedProvider(0))

	for _, prompt := range []string{"need a location", "anything at all"} {
		res, err := svc.Suggest(context.Background(), &SuggestionRequest{Prompt: prompt, Type: SuggestLocation})
		if err != nil {
			t.Fatalf("Suggest error = %v", err)
		}
		if len(res.Suggestions) != 2 {
			t.Fatalf("expected 2 suggestions, got %d", len(res.Suggestions))
		}
		first, ok := res.Suggestions[0].(LocationOption)
		if !ok || first.Title != "Urban Rooftop" {
			t.Errorf("unexpected first suggestion %+v", res.Suggestions[0])
		}
		if res.Suggestions[1].(LocationOption).Title != "Industrial Warehouse" {
			t.Errorf("unexpected second suggestion %+v", res.Suggestions[1])
		}
		if res.Prompt != prompt || res.Type != SuggestLocation || res.GeneratedAt.IsZero() {
			t.Errorf("unexpected envelope %+v", res)
		}
	}
}

func TestCannedProvider_Categories(t *testing.T) {
	p := NewCannedProvider(0)
	tests := []struct {
		category string
		check    func(any) bool
	}{
		{SuggestCasting, func(v any) bool { _, ok := v.(CastingNeed); return ok }},
		{SuggestScheduling, func(v any) bool { _, ok := v.(ScheduleBlock); return ok }},
		{SuggestScript, func(v any) bool { _, ok := v.(ScriptMetric); return ok }},
		{SuggestGeneral, func(v any) bool { _, ok := v.(GeneralTip); return ok }},
		{"unknown", func(v any) bool { _, ok := v.(GeneralTip); return ok }},
	}
	for _, tt := range tests {
		items, err := p.Generate(context.Background(), "p", tt.category)
		if err != nil {
			t.Fatalf("%s: Generate error = %v", tt.category, err)
		}
		if len(items) == 0 || !tt.check(items[0]) {
			t.Errorf("%s: unexpected payload %+v", tt.category, items)
		}
	}
}

func TestCannedProvider_DelayHonoursContext(t *testing.T) {
	p := NewCannedProvider(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := p.Generate(ctx, "p", SuggestLocation)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled request should not wait for the delay")
	}
}

func TestAnalyzeScript(t *testing.T) {
	svc := NewAIService(NewCannedProvider(0))

	res, err := svc.AnalyzeScript(context.Background(), &AnalyzeScriptRequest{Script: "INT. OFFICE - DAY\n  Two  people talk."})
	if err != nil {
		t.Fatalf("AnalyzeScript error = %v", err)
	}
	if res.WordCount != 7 {
		t.Errorf("WordCount = %d, expected 7", res.WordCount)
	}
	if res.EstimatedDuration != "1 minutes" {
		t.Errorf("EstimatedDuration = %q", res.EstimatedDuration)
	}
	if res.Complexity != "Medium" || len(res.Locations) != 3 || res.Budget.Breakdown["crew"] != "$2,000" {
		t.Errorf("unexpected canned analysis %+v", res)
	}

	long := analyzeScript(strings.Repeat("word ", 301))
	if long.WordCount != 301 || long.EstimatedDuration != "3 minutes" {
		t.Errorf("301 words = %d / %q, expected 3 minutes", long.WordCount, long.EstimatedDuration)
	}
}

func TestParseSuggestions(t *testing.T) {
	items, err := parseSuggestions("Sure!\n```json\n[{\"title\":\"Pier\"},{\"title\":\"Loft\"}]\n```")
	if err != nil {
		t.Fatalf("parseSuggestions error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}

	for _, bad := range []string{"no json here", "[]", "[not json]"} {
		if _, err := parseSuggestions(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestNewSuggestionProvider(t *testing.T) {
	if p := NewSuggestionProvider(config.AIConfig{Provider: "canned"}); p.Name() != "canned" {
		t.Errorf("expected canned provider, got %s", p.Name())
	}
	if p := NewSuggestionProvider(config.AIConfig{}); p.Name() != "canned" {
		t.Errorf("empty provider should be canned, got %s", p.Name())
	}
	if p := NewSuggestionProvider(config.AIConfig{Provider: "openai"}); p.Name() != "openai" {
		t.Errorf("expected openai provider, got %s", p.Name())
	}
}

func TestLLMProvider_FallsBackToCanned(t *testing.T) {
	// nothing listens on this port, so the call fails fast
	p := NewLLMProvider(config.AIConfig{Provider: "openai", BaseURL: "http://127.0.0.1:1/v1", APIKey: "test"})

	items, err := p.Generate(context.Background(), "rooftop", SuggestLocation)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	if len(items) != 2 || items[0].(LocationOption).Title != "Urban Rooftop" {
		t.Errorf("expected canned location fallback, got %+v", items)
	}
}

func TestSuggestionPrompt(t *testing.T) {
	got := suggestionPrompt("rooftop at dusk", SuggestCasting)
	for _, want := range []string{"casting", `"role"`, "rooftop at dusk"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}
