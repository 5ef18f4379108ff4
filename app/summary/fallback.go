package summary

import (
	"regexp"
	"sort"
	"strings"
)

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]+`)
	nonWordPattern   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// fallbackSummarize takes the leading sentences of the text, which for news
// copy tends to front-load the key facts.
func fallbackSummarize(text string, level Level) Result {
	cfg, ok := levelConfigs[level]
	if !ok {
		cfg = levelConfigs[LevelStandard]
	}

	var sentences []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		if s = strings.TrimSpace(s); len(s) > 10 {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return Result{Text: "No content available for summarization.", Method: "fallback"}
	}

	if len(sentences) > cfg.sentences {
		sentences = sentences[:cfg.sentences]
	}

	summaryText := strings.Join(sentences, ". ") + "."

	return Result{
		Text:      summaryText,
		Method:    "fallback",
		WordCount: len(strings.Fields(summaryText)),
	}
}

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "have": {}, "will": {}, "from": {},
	"they": {}, "been": {}, "were": {}, "said": {}, "each": {}, "which": {},
	"their": {}, "time": {}, "would": {}, "there": {}, "could": {}, "other": {},
	"after": {}, "first": {}, "well": {}, "many": {}, "some": {}, "what": {},
	"when": {}, "where": {}, "much": {}, "should": {}, "very": {}, "through": {},
	"just": {}, "being": {}, "about": {}, "into": {}, "also": {}, "more": {},
}

// fallbackKeywords picks the most frequent non-stopword terms.
func fallbackKeywords(text string, maxCount int) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), "")

	counts := map[string]int{}
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 {
			continue
		}
		if _, skip := stopWords[word]; skip {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}

	// Frequency descending, alphabetical among equals to keep output stable.
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxCount {
		words = words[:maxCount]
	}

	return words
}
