package analyzer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Analyzer runs the three tools. Each call is one synchronous
// fetch, extract, analyze pipeline; nothing is cached between calls.
type Analyzer struct {
	fetcher PageFetcher
	log     *logrus.Logger
}

// New creates an Analyzer that fetches pages through fetcher.
func New(fetcher PageFetcher, log *logrus.Logger) *Analyzer {
	return &Analyzer{fetcher: fetcher, log: log}
}

// ScanSEO scores the structural SEO signals of the page at rawURL.
func (a *Analyzer) ScanSEO(ctx context.Context, rawURL string) (*SeoScanResult, error) {
	facts, err := a.load(ctx, "seoScan", rawURL)
	if err != nil {
		return nil, err
	}
	return BuildSeoScanResult(rawURL, facts), nil
}

// KeywordHeatmap counts keyword occurrences in the visible body text.
func (a *Analyzer) KeywordHeatmap(ctx context.Context, rawURL string, keywords []string) (*KeywordHeatmapResult, error) {
	facts, err := a.load(ctx, "keywordHeatmap", rawURL)
	if err != nil {
		return nil, err
	}
	details := AnalyzeKeywords(facts.BodyText, keywords)
	counts := make(map[string]int, len(details))
	for _, d := range details {
		counts[d.Keyword] = d.Count
	}
	return &KeywordHeatmapResult{
		URL:        rawURL,
		Keywords:   counts,
		TotalWords: WordCount(facts.BodyText),
		Details:    details,
	}, nil
}

// Citations detects links to the known citation platforms.
func (a *Analyzer) Citations(ctx context.Context, rawURL string) (*CitationResult, error) {
	facts, err := a.load(ctx, "citations", rawURL)
	if err != nil {
		return nil, err
	}
	citations, score := CheckCitations(facts.Links)
	return &CitationResult{URL: rawURL, Citations: citations, Score: score}, nil
}

func (a *Analyzer) load(ctx context.Context, operation, rawURL string) (PageFacts, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return PageFacts{}, err
	}

	start := time.Now()
	page, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"operation": operation,
			"url":       rawURL,
		}).WithError(err).Error("analysis failed")
		return PageFacts{}, err
	}
	facts := Extract(rawURL, page)

	a.log.WithFields(logrus.Fields{
		"operation":   operation,
		"url":         rawURL,
		"duration_ms": time.Since(start).Milliseconds(),
		"page_bytes":  len(page),
	}).Info("analysis completed")
	return facts, nil
}
