// ABOUTME: Prompt construction for external natural-language summary services.
// ABOUTME: The engine supplies totals and labels; generation stays external.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TextSummaryService generates natural-language text from a prompt.
// Opaque to the engine; implementations live outside this module.
type TextSummaryService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SummaryPrompt builds the prompt for a natural-language summary of the
// range, one line per category with data.
func (e *Engine) SummaryPrompt(ctx context.Context, start, end time.Time) (string, error) {
	totals, err := e.MonthlyStats(ctx, start, end)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize this health data for %s through %s in two sentences:\n",
		start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
	for _, cat := range e.registry.All() {
		s, ok := totals[cat.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s total", cat.Label(), s.FormattedTotal)
		if s.FormattedAverage != "" {
			fmt.Fprintf(&b, ", %s average", s.FormattedAverage)
		}
		fmt.Fprintf(&b, " across %d days with data\n", s.UnitsWithData)
	}
	return b.String(), nil
}

// Summarize builds the prompt and asks the external service for text.
func (e *Engine) Summarize(ctx context.Context, svc TextSummaryService, start, end time.Time) (string, error) {
	prompt, err := e.SummaryPrompt(ctx, start, end)
	if err != nil {
		return "", err
	}
	text, err := svc.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return text, nil
}
