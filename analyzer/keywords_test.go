package analyzer

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeKeywords(t *testing.T) {
	got := NormalizeKeywords([]string{" SEO ", "seo", "", "Local Search", "  "})
	want := []string{"seo", "local search"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestParseKeywords(t *testing.T) {
	if got := ParseKeywords(""); len(got) != 0 {
		t.Errorf("Expected no keywords, got %v", got)
	}
	got := ParseKeywords("seo, Marketing,,seo")
	want := []string{"seo", "marketing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCountKeywordsWholeWord(t *testing.T) {
	counts := CountKeywords("seodoc seo", []string{"seo"})
	if counts["seo"] != 1 {
		t.Errorf("Expected 1 whole-word match, got %d", counts["seo"])
	}
}

func TestCountKeywordsUnicodeBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    int
	}{
		{"accented keyword inside longer word", "les cafés de paris", "café", 0},
		{"accented keyword as a word", "un café, deux café", "café", 2},
		{"ascii keyword before accented letter", "seoé seo", "seo", 1},
		{"keyword after accented letter", "éseo seo", "seo", 1},
		{"cyrillic", "москва москвич", "москва", 1},
		{"adjacent repeats", "seo seo seo", "seo", 3},
		{"keyword with trailing symbol", "c++ c++x", "c++", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountKeywords(tt.text, []string{tt.keyword})[tt.keyword]; got != tt.want {
				t.Errorf("Expected %d matches of %q in %q, got %d", tt.want, tt.keyword, tt.text, got)
			}
		})
	}
}

func TestCountKeywordsEscapesMetacharacters(t *testing.T) {
	counts := CountKeywords("we love c++ and c. also node.js, not nodexjs", []string{"c++", "node.js", "c."})
	if counts["c++"] != 1 {
		t.Errorf("Expected c++ once, got %d", counts["c++"])
	}
	if counts["node.js"] != 1 {
		t.Errorf("Expected node.js once, got %d", counts["node.js"])
	}
	if counts["c."] != 1 {
		t.Errorf("Expected c. once, got %d", counts["c."])
	}
}

func TestCountKeywordsEmptyList(t *testing.T) {
	counts := CountKeywords("anything at all", nil)
	if counts == nil || len(counts) != 0 {
		t.Errorf("Expected empty non-nil map, got %v", counts)
	}
}

func TestCountKeywordsCaseInsensitive(t *testing.T) {
	counts := CountKeywords("Plumbing PLUMBING plumbing", []string{"PlumBing"})
	if counts["plumbing"] != 3 {
		t.Errorf("Expected 3 matches, got %d", counts["plumbing"])
	}
}

func TestAnalyzeKeywords(t *testing.T) {
	words := make([]string, 200)
	for i := range words {
		words[i] = "filler"
	}
	for _, i := range []int{9, 50, 100, 150} {
		words[i] = "seo"
	}
	words[3] = "local"
	body := strings.Join(words, " ")

	stats := AnalyzeKeywords(body, []string{"seo", "local", "missing"})
	if len(stats) != 3 {
		t.Fatalf("Expected 3 stats, got %d", len(stats))
	}

	seo := stats[0]
	if seo.Count != 4 || seo.Density != 2.0 || seo.Position != 10 || seo.Relevance != RelevanceHigh {
		t.Errorf("Unexpected seo stat %+v", seo)
	}
	local := stats[1]
	if local.Count != 1 || local.Density != 0.5 || local.Position != 4 || local.Relevance != RelevanceMedium {
		t.Errorf("Unexpected local stat %+v", local)
	}
	missing := stats[2]
	if missing.Count != 0 || missing.Density != 0 || missing.Position != 0 || missing.Relevance != RelevanceLow {
		t.Errorf("Unexpected missing stat %+v", missing)
	}
}

func TestDensity(t *testing.T) {
	tests := []struct {
		count, total int
		want         float64
	}{
		{4, 200, 2.0},
		{1, 3, 33.33},
		{5, 0, 0},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := Density(tt.count, tt.total); got != tt.want {
			t.Errorf("Density(%d, %d): expected %v, got %v", tt.count, tt.total, tt.want, got)
		}
	}
}

func TestRelevanceFor(t *testing.T) {
	tests := []struct {
		density float64
		want    Relevance
	}{
		{5, RelevanceHigh},
		{2.0, RelevanceHigh},
		{1.99, RelevanceMedium},
		{0.5, RelevanceMedium},
		{0.49, RelevanceLow},
		{0, RelevanceLow},
	}
	for _, tt := range tests {
		if got := RelevanceFor(tt.density); got != tt.want {
			t.Errorf("RelevanceFor(%v): expected %s, got %s", tt.density, tt.want, got)
		}
	}
}
