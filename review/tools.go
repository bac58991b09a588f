package review

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tailored-agentic-units/flowgraph/state"
	"github.com/tailored-agentic-units/flowgraph/tools"
)

// Tool names.
const (
	ToolExtractFunctions    = "extract_functions"
	ToolCheckComplexity     = "check_complexity"
	ToolDetectBasicIssues   = "detect_basic_issues"
	ToolSuggestImprovements = "suggest_improvements"
	ToolDecideQualityRoute  = "decide_quality_route"
	ToolAutoImproveCode     = "auto_improve_code"
	ToolFinalizeReview      = "finalize_review"
)

// Context keys read and written by the review tools.
const (
	KeyCode              = "code"
	KeyFunctionCount     = "function_count"
	KeyComplexityScore   = "complexity_score"
	KeyIssues            = "issues"
	KeySuggestions       = "suggestions"
	KeyQualityScore      = "quality_score"
	KeyThreshold         = "threshold"
	KeyRoute             = "route"
	KeyImprovementRounds = "improvement_rounds"
	KeyReviewStatus      = "review_status"
)

// Routing outcomes written by decide_quality_route.
const (
	RouteContinue = "continue"
	RouteFinish   = "finish"
)

// Suggestion texts.
const (
	SuggestShortLines   = "Break down long lines (>80 chars)."
	SuggestSplit        = "Refactor into smaller, focused functions."
	SuggestAutoImproved = "Applied automatic improvement round."
)

const (
	// DefaultThreshold is the passing quality score when the context has no
	// threshold.
	DefaultThreshold = 75
	maxLineLength    = 80
)

// Tools returns the review tools keyed by name.
func Tools() map[string]tools.Tool {
	return map[string]tools.Tool{
		ToolExtractFunctions:    tools.Func(ExtractFunctions),
		ToolCheckComplexity:     tools.Func(CheckComplexity),
		ToolDetectBasicIssues:   tools.Func(DetectBasicIssues),
		ToolSuggestImprovements: tools.Func(SuggestImprovements),
		ToolDecideQualityRoute:  tools.Func(DecideQualityRoute),
		ToolAutoImproveCode:     tools.Func(AutoImproveCode),
		ToolFinalizeReview:      tools.Func(FinalizeReview),
	}
}

// ExtractFunctions counts "def " occurrences in code.
func ExtractFunctions(_ context.Context, c state.Context) (state.Context, error) {
	code := c.Str(KeyCode, "")
	c.Set(KeyFunctionCount, state.Int(int64(strings.Count(code, "def "))))
	return c, nil
}

// CheckComplexity scores complexity as ten per function.
func CheckComplexity(_ context.Context, c state.Context) (state.Context, error) {
	c.Set(KeyComplexityScore, scale(number(c, KeyFunctionCount), 10).value())
	return c, nil
}

// DetectBasicIssues counts lines longer than 80 characters.
func DetectBasicIssues(_ context.Context, c state.Context) (state.Context, error) {
	var long int64
	for _, line := range strings.FieldsFunc(c.Str(KeyCode, ""), isLineBreak) {
		if utf8.RuneCountInString(line) > maxLineLength {
			long++
		}
	}
	c.Set(KeyIssues, state.Int(long))
	return c, nil
}

// SuggestImprovements rebuilds the suggestion list and computes
// quality_score = max(0, 100 - complexity - 2*issues).
func SuggestImprovements(_ context.Context, c state.Context) (state.Context, error) {
	issues := number(c, KeyIssues)
	complexity := number(c, KeyComplexityScore)

	suggestions := []string{}
	if issues.float() > 0 {
		suggestions = append(suggestions, SuggestShortLines)
	}
	if complexity.float() > 50 {
		suggestions = append(suggestions, SuggestSplit)
	}
	c.Set(KeySuggestions, state.Strings(suggestions...))

	quality := numeric{i: 100}.sub(complexity).sub(scale(issues, 2))
	c.Set(KeyQualityScore, quality.atLeastZero().value())
	return c, nil
}

// DecideQualityRoute writes "finish" when quality_score reaches the
// threshold and "continue" otherwise.
func DecideQualityRoute(_ context.Context, c state.Context) (state.Context, error) {
	quality := c.Float(KeyQualityScore, 0)
	threshold := c.Float(KeyThreshold, DefaultThreshold)

	route := RouteContinue
	if quality >= threshold {
		route = RouteFinish
	}
	c.Set(KeyRoute, state.String(route))
	return c, nil
}

// AutoImproveCode simulates one refinement round: one fewer issue, ten more
// quality points, and a note in the suggestions.
func AutoImproveCode(_ context.Context, c state.Context) (state.Context, error) {
	issues := number(c, KeyIssues)
	if issues.float() > 0 {
		issues = issues.sub(numeric{i: 1})
	}
	c.Set(KeyIssues, issues.value())

	c.Set(KeyQualityScore, number(c, KeyQualityScore).add(numeric{i: 10}).value())
	c.Set(KeyImprovementRounds, number(c, KeyImprovementRounds).add(numeric{i: 1}).value())

	suggestions, _ := c.Get(KeySuggestions)
	c.Set(KeySuggestions, suggestions.Append(state.String(SuggestAutoImproved)))
	return c, nil
}

// FinalizeReview marks the review completed.
func FinalizeReview(_ context.Context, c state.Context) (state.Context, error) {
	c.Set(KeyReviewStatus, state.String("completed"))
	return c, nil
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
