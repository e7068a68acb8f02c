package router

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Doc-intent terms. Explanatory or system questions always route to
// retrieval, regardless of which datasets happen to be available.
var docIntentKeywords = []string{
	"how to", "what is", "explain", "describe", "setup", "configuration",
	"architecture", "feature", "capability", "system", "framework",
	"report", "documentation", "guide", "overview",
}

// Aggregation terms for the degraded-classifier fallback. "min" and "max"
// also cover "minimum"/"maximum" as substrings.
var dataKeywords = []string{
	"average", "sum", "count", "total", "top", "highest", "lowest",
	"min", "max", "mean", "median", "filter", "sort", "aggregate",
	"group by", "wise",
}

const classifyTimeout = 15 * time.Second

const classifySystemPrompt = `You classify user questions for a retrieval system.
STRUCTURED means the question needs numeric computation over tabular data:
aggregates, statistics, rankings, filtering, grouping.
DOCUMENT means the question needs reading text: explanations, concepts,
definitions, summaries.
Questions like "what is X", "explain Y", "describe Z" are ALWAYS DOCUMENT,
even when tabular files exist.
Respond with exactly one word: STRUCTURED or DOCUMENT.`

// Classify decides whether the question takes the structured or the
// unstructured path.
//
// A doc-intent keyword routes to UNSTRUCTURED immediately, and with no
// datasets there is nothing to compute over. Otherwise the completion
// service chooses between the two labels, degrading to the
// aggregation-keyword heuristic when the call fails. Classify never errors.
func (r *Router) Classify(ctx context.Context, question string, datasets []Dataset) Route {
	lower := strings.ToLower(question)

	for _, kw := range docIntentKeywords {
		if strings.Contains(lower, kw) {
			r.logger.Debug("doc-intent keyword routed to retrieval", "keyword", kw)
			return RouteUnstructured
		}
	}

	if len(datasets) == 0 {
		return RouteUnstructured
	}

	var files strings.Builder
	for _, ds := range datasets {
		fmt.Fprintf(&files, "- %s: %d columns\n", ds.Filename, len(ds.Columns))
	}
	prompt := fmt.Sprintf("Question: %q\n\nAvailable tabular files:\n%s\nClassification:", question, files.String())

	callCtx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	label, err := r.completer.Complete(callCtx, classifySystemPrompt, prompt)
	if err != nil {
		r.logger.Warn("classifier unavailable, using keyword heuristic", "error", err)
		return classifyByKeywords(lower, datasets)
	}

	if strings.ToUpper(strings.TrimSpace(label)) == string(RouteStructured) {
		return RouteStructured
	}
	// Any other label, including DOCUMENT, routes to retrieval.
	return RouteUnstructured
}

// classifyByKeywords is the degraded-mode heuristic: aggregation terms plus
// at least one dataset mean structured, anything else retrieval.
func classifyByKeywords(lowerQuestion string, datasets []Dataset) Route {
	if len(datasets) == 0 {
		return RouteUnstructured
	}
	for _, kw := range dataKeywords {
		if strings.Contains(lowerQuestion, kw) {
			return RouteStructured
		}
	}
	return RouteUnstructured
}
