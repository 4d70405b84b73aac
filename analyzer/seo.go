package analyzer

import "fmt"

// Score deductions.
const (
	missingTitlePenalty       = 20
	missingDescriptionPenalty = 15
	noH1Penalty               = 15
	multipleH1Penalty         = 10
	altTextPenaltyPerImage    = 2
	maxAltTextPenalty         = 10
	noInternalLinksPenalty    = 10
	noExternalLinksPenalty    = 10
)

// Score applies the fixed deduction table to facts. Missing internal or
// external links lower the score without adding an issue message.
func Score(facts PageFacts) (int, []string) {
	issues := []string{}
	score := 100

	if facts.Title == "" {
		issues = append(issues, "Missing title tag")
		score -= missingTitlePenalty
	}
	if facts.MetaDescription == nil || *facts.MetaDescription == "" {
		issues = append(issues, "Missing meta description")
		score -= missingDescriptionPenalty
	}
	if facts.H1Count == 0 {
		issues = append(issues, "No H1 tags found")
		score -= noH1Penalty
	}
	if facts.H1Count > 1 {
		issues = append(issues, "Multiple H1 tags found")
		score -= multipleH1Penalty
	}
	if n := facts.ImagesWithoutAlt(); n > 0 {
		issues = append(issues, fmt.Sprintf("%d images missing alt text", n))
		score -= min(maxAltTextPenalty, altTextPenaltyPerImage*n)
	}

	internal := facts.InternalLinks()
	if internal == 0 {
		score -= noInternalLinksPenalty
	}
	if len(facts.Links)-internal == 0 {
		score -= noExternalLinksPenalty
	}

	return max(0, score), issues
}

// BuildSeoScanResult scores facts and assembles the scanner response.
func BuildSeoScanResult(pageURL string, facts PageFacts) *SeoScanResult {
	score, issues := Score(facts)
	internal := facts.InternalLinks()
	return &SeoScanResult{
		URL:             pageURL,
		Title:           facts.Title,
		MetaDescription: facts.MetaDescription,
		Headings:        Headings{H1: facts.H1Count, H2: facts.H2Count},
		Images:          ImageStats{Total: len(facts.Images), WithoutAlt: facts.ImagesWithoutAlt()},
		Links: LinkStats{
			Total:    len(facts.Links),
			Internal: internal,
			External: len(facts.Links) - internal,
		},
		Issues: issues,
		Score:  score,
	}
}
