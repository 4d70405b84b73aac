package analyzer

import "fmt"

// AnalysisRequest is the input of every tool.
type AnalysisRequest struct {
	URL      string   `json:"url"`
	Keywords []string `json:"keywords,omitempty"`
}

// Image is a single <img> element found on the page.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Link is a single <a href> element found on the page.
type Link struct {
	Href     string `json:"href"`
	Text     string `json:"text"`
	Internal bool   `json:"internal"`
}

// PageFacts holds everything the tools need from one fetched page.
// It lives for the duration of a single analysis.
type PageFacts struct {
	Title           string
	MetaDescription *string
	H1Count         int
	H2Count         int
	Images          []Image
	Links           []Link
	BodyText        string
}

// ImagesWithoutAlt counts images whose alt text is missing or empty.
func (f PageFacts) ImagesWithoutAlt() int {
	n := 0
	for _, img := range f.Images {
		if img.Alt == "" {
			n++
		}
	}
	return n
}

// InternalLinks counts links pointing at the analyzed origin.
func (f PageFacts) InternalLinks() int {
	n := 0
	for _, l := range f.Links {
		if l.Internal {
			n++
		}
	}
	return n
}

// Headings holds heading element counts.
type Headings struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
}

// Validate rejects negative counts.
func (h Headings) Validate() error {
	if h.H1 < 0 || h.H2 < 0 {
		return fmt.Errorf("negative heading count h1=%d h2=%d", h.H1, h.H2)
	}
	return nil
}

// ImageStats summarizes the image inventory.
type ImageStats struct {
	Total      int `json:"total"`
	WithoutAlt int `json:"withoutAlt"`
}

// Validate checks the counts are consistent.
func (s ImageStats) Validate() error {
	if s.Total < 0 || s.WithoutAlt < 0 || s.WithoutAlt > s.Total {
		return fmt.Errorf("inconsistent image stats total=%d withoutAlt=%d", s.Total, s.WithoutAlt)
	}
	return nil
}

// LinkStats summarizes the link inventory.
type LinkStats struct {
	Total    int `json:"total"`
	Internal int `json:"internal"`
	External int `json:"external"`
}

// Validate checks the counts are consistent.
func (s LinkStats) Validate() error {
	if s.Internal < 0 || s.External < 0 || s.Internal+s.External != s.Total {
		return fmt.Errorf("inconsistent link stats total=%d internal=%d external=%d", s.Total, s.Internal, s.External)
	}
	return nil
}

// SeoScanResult is the canonical (v1) response of the SEO scanner.
type SeoScanResult struct {
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	MetaDescription *string    `json:"metaDescription"`
	Headings        Headings   `json:"headings"`
	Images          ImageStats `json:"images"`
	Links           LinkStats  `json:"links"`
	Issues          []string   `json:"issues"`
	Score           int        `json:"score"`
}

// Relevance is a coarse classification of keyword density.
type Relevance string

const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// KeywordStat is the per-keyword detail of a heat map.
type KeywordStat struct {
	Keyword   string    `json:"keyword"`
	Count     int       `json:"count"`
	Density   float64   `json:"density"`
	Position  int       `json:"position"`
	Relevance Relevance `json:"relevance"`
}

// KeywordHeatmapResult is the response of the keyword heat map tool.
type KeywordHeatmapResult struct {
	URL        string         `json:"url"`
	Keywords   map[string]int `json:"keywords"`
	TotalWords int            `json:"totalWords"`
	Details    []KeywordStat  `json:"details"`
}

// Citation records whether a platform is linked from the page.
type Citation struct {
	Found bool   `json:"found"`
	URL   string `json:"url"`
}

// CitationResult is the response of the citation checker.
type CitationResult struct {
	URL       string              `json:"url"`
	Citations map[string]Citation `json:"citations"`
	Score     int                 `json:"score"`
}
