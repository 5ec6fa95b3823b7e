package services

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	SuggestLocation   = "location"
	SuggestCasting    = "casting"
	SuggestScheduling = "scheduling"
	SuggestScript     = "script"
	SuggestGeneral    = "general"
)

// SuggestionProvider produces production suggestions for a category. The
// canned provider ignores the prompt; model-backed providers use it.
type SuggestionProvider interface {
	Name() string
	Generate(ctx context.Context, prompt, category string) ([]any, error)
	AnalyzeScript(ctx context.Context, script string) (*ScriptAnalysis, error)
}

type LocationOption struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	Cost        string   `json:"cost"`
}

type CastingNeed struct {
	Role         string   `json:"role"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Budget       string   `json:"budget"`
}

type ScheduleBlock struct {
	Phase    string   `json:"phase"`
	Duration string   `json:"duration"`
	Tasks    []string `json:"tasks"`
	Timeline string   `json:"timeline"`
}

type ScriptMetric struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
	Note   string `json:"note"`
}

type GeneralTip struct {
	Suggestion string `json:"suggestion"`
	Category   string `json:"category"`
	Impact     string `json:"impact"`
}

type BudgetEstimate struct {
	Estimated string            `json:"estimated"`
	Breakdown map[string]string `json:"breakdown"`
}

type ScriptAnalysis struct {
	WordCount         int            `json:"wordCount"`
	EstimatedDuration string         `json:"estimatedDuration"`
	Complexity        string         `json:"complexity"`
	Locations         []string       `json:"locations"`
	Characters        []string       `json:"characters"`
	Equipment         []string       `json:"equipment"`
	Budget            BudgetEstimate `json:"budget"`
	Recommendations   []string       `json:"recommendations"`
}

var cannedSuggestions = map[string][]any{
	SuggestLocation: {
		LocationOption{
			Title:       "Urban Rooftop",
			Description: "Modern city skyline backdrop with golden hour lighting",
			Pros:        []string{"Great natural lighting", "Urban aesthetic", "Multiple angles"},
			Cons:        []string{"Weather dependent", "Permit required"},
			Cost:        "$500-800/day",
		},
		LocationOption{
			Title:       "Industrial Warehouse",
			Description: "Spacious interior with high ceilings and dramatic lighting",
			Pros:        []string{"Controlled environment", "Versatile space", "Good acoustics"},
			Cons:        []string{"May need additional lighting", "Limited natural light"},
			Cost:        "$300-600/day",
		},
	},
	SuggestCasting: {
		CastingNeed{
			Role:         "Lead Actor",
			Description:  "Charismatic professional with commercial experience",
			Requirements: []string{"Age 25-35", "Previous commercial work", "Available for 3 days"},
			Budget:       "$2000-3000/day",
		},
		CastingNeed{
			Role:         "Supporting Cast",
			Description:  "Diverse group for background and supporting roles",
			Requirements: []string{"Various ages", "Local talent", "Flexible schedule"},
			Budget:       "$200-400/day each",
		},
	},
	SuggestScheduling: {
		ScheduleBlock{
			Phase:    "Pre-production",
			Duration: "2 weeks",
			Tasks:    []string{"Script finalization", "Location scouting", "Casting", "Equipment prep"},
			Timeline: "Weeks 1-2",
		},
		ScheduleBlock{
			Phase:    "Production",
			Duration: "1 week",
			Tasks:    []string{"Principal photography", "B-roll capture", "Interviews"},
			Timeline: "Week 3",
		},
	},
	SuggestScript: {
		ScriptMetric{Metric: "Pacing", Value: "Moderate", Note: "Scenes average under two minutes of screen time"},
		ScriptMetric{Metric: "Dialogue ratio", Value: "60%", Note: "Dialogue-heavy; plan for clean location sound"},
		ScriptMetric{Metric: "Scene count", Value: "12", Note: "Group scenes by location to cut company moves"},
	},
	SuggestGeneral: {
		GeneralTip{
			Suggestion: "Consider shooting during golden hour for better lighting",
			Category:   "Cinematography",
			Impact:     "High",
		},
		GeneralTip{
			Suggestion: "Plan for backup indoor locations in case of weather issues",
			Category:   "Production Planning",
			Impact:     "Medium",
		},
	},
}

// CannedProvider answers from a fixed table after an artificial delay.
type CannedProvider struct {
	delay time.Duration
}

func NewCannedProvider(delay time.Duration) *CannedProvider {
	return &CannedProvider{delay: delay}
}

func (p *CannedProvider) Name() string {
	return "canned"
}

func (p *CannedProvider) Generate(ctx context.Context, prompt, category string) ([]any, error) {
	if err := sleepCtx(ctx, p.delay); err != nil {
		return nil, err
	}
	return cannedFor(category), nil
}

func (p *CannedProvider) AnalyzeScript(ctx context.Context, script string) (*ScriptAnalysis, error) {
	if err := sleepCtx(ctx, p.delay); err != nil {
		return nil, err
	}
	return analyzeScript(script), nil
}

func cannedFor(category string) []any {
	if s, ok := cannedSuggestions[category]; ok {
		return s
	}
	return cannedSuggestions[SuggestGeneral]
}

// analyzeScript derives word count and runtime (150 words a minute) from the
// text; the rest is a fixed breakdown.
func analyzeScript(script string) *ScriptAnalysis {
	words := len(strings.Fields(script))
	minutes := int(math.Ceil(float64(words) / 150))

	return &ScriptAnalysis{
		WordCount:         words,
		EstimatedDuration: formatMinutes(minutes),
		Complexity:        "Medium",
		Locations:         []string{"Interior - Office", "Exterior - Park", "Interior - Car"},
		Characters:        []string{"Protagonist", "Supporting Character 1", "Supporting Character 2"},
		Equipment:         []string{"Camera", "Microphone", "Lighting kit", "Tripod"},
		Budget: BudgetEstimate{
			Estimated: "$5,000 - $8,000",
			Breakdown: map[string]string{
				"crew":           "$2,000",
				"equipment":      "$1,500",
				"locations":      "$1,000",
				"postProduction": "$1,500",
				"miscellaneous":  "$1,000",
			},
		},
		Recommendations: []string{
			"Consider shooting interior scenes first for better schedule flexibility",
			"Plan for additional lighting equipment for office scenes",
			"Schedule outdoor scenes during optimal weather conditions",
		},
	}
}

func formatMinutes(n int) string {
	return strconv.Itoa(n) + " minutes"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
