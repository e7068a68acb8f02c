package router

import "strings"

// Tokens too generic to indicate which dataset a question is about.
var selectionStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {},
	"what": {}, "which": {}, "who": {}, "how": {}, "when": {}, "where": {}, "why": {},
	"are": {}, "was": {}, "were": {}, "has": {}, "have": {}, "had": {},
	"but": {}, "can": {}, "did": {}, "does": {}, "may": {}, "might": {}, "must": {},
	"need": {}, "shall": {}, "should": {}, "will": {}, "would": {},
	"give": {}, "data": {}, "information": {},
}

const (
	columnMatchScore   = 10
	filenameMatchScore = 2
)

// SelectDataset picks the dataset a question most likely targets.
//
// Each question token longer than two characters (stop words removed) scores
// +10 for the first column it matches by substring in either direction, and
// +2 when it appears in the filename. The highest-scoring dataset wins; ties
// and an all-zero scoreboard both resolve to the first dataset, so a single
// candidate is always returned as long as any exist.
func SelectDataset(question string, datasets []Dataset) (Dataset, bool) {
	if len(datasets) == 0 {
		return Dataset{}, false
	}
	if len(datasets) == 1 {
		return datasets[0], true
	}

	tokens := selectionTokens(question)

	best := datasets[0]
	bestScore := 0
	for _, ds := range datasets {
		score := scoreDataset(tokens, ds)
		if score > bestScore {
			best = ds
			bestScore = score
		}
	}
	return best, true
}

func selectionTokens(question string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(question)) {
		tok = strings.Trim(tok, ".,!?;:'\"()")
		if len(tok) <= 2 {
			continue
		}
		if _, stop := selectionStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func scoreDataset(tokens []string, ds Dataset) int {
	lowerName := strings.ToLower(ds.Filename)
	score := 0
	for _, tok := range tokens {
		// At most one column credit per token.
		for _, col := range ds.Columns {
			lowerCol := strings.ToLower(col)
			if strings.Contains(lowerCol, tok) || strings.Contains(tok, lowerCol) {
				score += columnMatchScore
				break
			}
		}
		if strings.Contains(lowerName, tok) {
			score += filenameMatchScore
		}
	}
	return score
}
