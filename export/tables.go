package export

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/seo-suite/backend/analyzer"
	"github.com/seo-suite/backend/store"
)

// SeoScanTable lays out one row per scan.
func SeoScanTable(rows []store.SeoScan) *Table {
	t := &Table{
		Name: "seo-scans",
		Columns: []string{
			"Date", "URL", "Title", "Meta Description", "H1", "H2",
			"Images", "Images Without Alt", "Links", "Internal Links", "External Links",
			"Score", "Issues",
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.CreatedAt, r.URL, r.Title, r.MetaDescription,
			r.Headings.V.H1, r.Headings.V.H2,
			r.Images.V.Total, r.Images.V.WithoutAlt,
			r.Links.V.Total, r.Links.V.Internal, r.Links.V.External,
			r.Score, strings.Join(r.Issues.V, "; "),
		})
	}
	return t
}

// HeatMapTable lays out one row per analyzed keyword.
func HeatMapTable(rows []store.HeatMap) *Table {
	t := &Table{
		Name:    "keyword-heatmaps",
		Columns: []string{"Date", "URL", "Total Words", "Keyword", "Count", "Density", "Position", "Relevance"},
	}
	for _, r := range rows {
		if len(r.Details.V) == 0 {
			t.Rows = append(t.Rows, []interface{}{r.CreatedAt, r.URL, r.TotalWords})
			continue
		}
		for _, d := range r.Details.V {
			t.Rows = append(t.Rows, []interface{}{
				r.CreatedAt, r.URL, r.TotalWords,
				d.Keyword, d.Count, d.Density, d.Position, string(d.Relevance),
			})
		}
	}
	return t
}

// CitationTable lays out one row per check with a column per platform
// holding the first matching link.
func CitationTable(rows []store.CitationCheck) *Table {
	title := cases.Title(language.English)
	t := &Table{
		Name:    "citations",
		Columns: []string{"Date", "URL", "Score"},
	}
	for _, p := range analyzer.Platforms {
		t.Columns = append(t.Columns, title.String(p.Name))
	}
	for _, r := range rows {
		row := []interface{}{r.CreatedAt, r.URL, r.Score}
		for _, p := range analyzer.Platforms {
			row = append(row, r.Citations.V[p.Name].URL)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
