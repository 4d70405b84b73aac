package analyzer

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Density thresholds, in percent, for the relevance tiers.
const (
	HighRelevanceDensity   = 2.0
	MediumRelevanceDensity = 0.5
)

// ParseKeywords splits the comma-separated keyword field of a request.
func ParseKeywords(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return NormalizeKeywords(strings.Split(csv, ","))
}

// NormalizeKeywords trims, lower-cases and de-duplicates keywords,
// keeping first-seen order and dropping empty entries.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// CountKeywords maps every keyword to its whole-word occurrence count.
// Keywords that never occur are present with a count of zero.
func CountKeywords(bodyText string, keywords []string) map[string]int {
	counts := make(map[string]int)
	for _, stat := range AnalyzeKeywords(bodyText, keywords) {
		counts[stat.Keyword] = stat.Count
	}
	return counts
}

// AnalyzeKeywords computes count, density, first position and relevance
// for every keyword, in normalized keyword order.
func AnalyzeKeywords(bodyText string, keywords []string) []KeywordStat {
	text := strings.ToLower(bodyText)
	total := WordCount(text)
	normalized := NormalizeKeywords(keywords)

	stats := make([]KeywordStat, 0, len(normalized))
	for _, kw := range normalized {
		matches := keywordMatches(text, kw)
		stat := KeywordStat{
			Keyword: kw,
			Count:   len(matches),
			Density: Density(len(matches), total),
		}
		if len(matches) > 0 {
			stat.Position = len(strings.Fields(text[:matches[0]])) + 1
		}
		stat.Relevance = RelevanceFor(stat.Density)
		stats = append(stats, stat)
	}
	return stats
}

// WordCount splits text on whitespace runs.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Density returns 100*count/totalWords rounded to two decimals.
func Density(count, totalWords int) float64 {
	if totalWords == 0 {
		return 0
	}
	d := 100 * float64(count) / float64(totalWords)
	return math.Round(d*100) / 100
}

// RelevanceFor maps a density percentage to its tier.
func RelevanceFor(density float64) Relevance {
	switch {
	case density >= HighRelevanceDensity:
		return RelevanceHigh
	case density >= MediumRelevanceDensity:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// keywordMatches returns the byte offsets of the non-overlapping whole-word
// occurrences of kw in text. A boundary is only required on a side where kw
// itself starts or ends with a letter, digit or underscore, so keywords such
// as "c++" still match.
func keywordMatches(text, kw string) []int {
	first, _ := utf8.DecodeRuneInString(kw)
	last, _ := utf8.DecodeLastRuneInString(kw)
	needStart, needEnd := isWordRune(first), isWordRune(last)

	var offsets []int
	for i := 0; i <= len(text)-len(kw); {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			break
		}
		start, end := i+j, i+j+len(kw)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (!needStart || start == 0 || !isWordRune(before)) && (!needEnd || end == len(text) || !isWordRune(after)) {
			offsets = append(offsets, start)
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		i = start + size
	}
	return offsets
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
