package analyzer

import (
	"math"
	"strings"
)

// Platform is a citation source detected by a substring of a link href.
type Platform struct {
	Name    string
	Pattern string
}

// Platforms is the fixed set of citation sources, in report order.
var Platforms = []Platform{
	{Name: "google", Pattern: "google.com/business"},
	{Name: "facebook", Pattern: "facebook.com"},
	{Name: "twitter", Pattern: "twitter.com"},
	{Name: "linkedin", Pattern: "linkedin.com"},
	{Name: "instagram", Pattern: "instagram.com"},
}

// CheckCitations reports, per platform, whether any link points at it and
// the href of the first such link in document order. Detection is link
// presence only; profiles are never requested.
func CheckCitations(links []Link) (map[string]Citation, int) {
	citations := make(map[string]Citation, len(Platforms))
	found := 0
	for _, p := range Platforms {
		c := Citation{}
		for _, l := range links {
			if strings.Contains(strings.ToLower(l.Href), p.Pattern) {
				c = Citation{Found: true, URL: l.Href}
				break
			}
		}
		if c.Found {
			found++
		}
		citations[p.Name] = c
	}
	score := int(math.Round(100 * float64(found) / float64(len(Platforms))))
	return citations, score
}
