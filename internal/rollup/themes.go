package rollup

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// stopwords are discarded during theme extraction: articles, pronouns,
// common auxiliary/function words. Tokens of length <= 3 are dropped before
// this set is consulted, so only longer words appear here.
var stopwords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "from": {}, "into": {}, "about": {},
	"they": {}, "them": {}, "their": {}, "theirs": {}, "your": {}, "yours": {},
	"ours": {}, "mine": {}, "myself": {}, "itself": {}, "themselves": {},
	"have": {}, "been": {}, "being": {}, "were": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "must": {}, "shall": {}, "does": {}, "doing": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {}, "there": {},
	"then": {}, "than": {}, "here": {}, "just": {}, "like": {}, "some": {},
	"very": {}, "much": {}, "more": {}, "most": {}, "only": {}, "over": {},
	"also": {}, "because": {}, "such": {}, "same": {}, "each": {}, "both": {},
	"again": {}, "really": {}, "today": {}, "still": {}, "even": {},
}

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// ExtractThemes tokenizes the given free-text blocks, counts word
// frequencies, and returns up to limit of the highest-frequency tokens,
// capitalized for display. Ties rank by first encounter, so identical inputs
// always yield identical output.
func ExtractThemes(texts []string, limit int) []string {
	counts := make(map[string]int)
	var order []string

	for _, text := range texts {
		cleaned := nonWordChars.ReplaceAllString(strings.ToLower(text), "")
		for _, token := range strings.Fields(cleaned) {
			if len(token) <= 3 {
				continue
			}
			if _, stop := stopwords[token]; stop {
				continue
			}
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	ranked := rankByFrequency(order, counts, limit)
	themes := make([]string, 0, len(ranked))
	for _, token := range ranked {
		themes = append(themes, capitalize(token))
	}
	return themes
}

// ConsolidateThemes frequency-ranks an already-extracted theme list
// (duplicates included) and returns the top limit themes, first-encountered
// order breaking ties. Used when rolling weekly themes into monthly ones and
// monthly into yearly.
func ConsolidateThemes(themes []string, limit int) []string {
	counts := make(map[string]int)
	var order []string

	for _, theme := range themes {
		if strings.TrimSpace(theme) == "" {
			continue
		}
		if _, seen := counts[theme]; !seen {
			order = append(order, theme)
		}
		counts[theme]++
	}

	return rankByFrequency(order, counts, limit)
}

// rankByFrequency sorts keys by descending count. The sort is stable over
// first-encountered order, which is the documented tie-break.
func rankByFrequency(order []string, counts map[string]int, limit int) []string {
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	result := make([]string, 0, len(ranked))
	result = append(result, ranked...)
	return result
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
