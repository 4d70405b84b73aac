package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seo-suite/backend/analyzer"
)

// Tool identifies one of the three analysis tools. Its value is the
// quota key used by the plan table.
type Tool string

const (
	ToolSEO      Tool = "seoScans"
	ToolHeatMap  Tool = "heatMaps"
	ToolCitation Tool = "citations"
)

// Tools lists every tool in display order.
var Tools = []Tool{ToolSEO, ToolHeatMap, ToolCitation}

func (t Tool) table() (string, error) {
	switch t {
	case ToolSEO:
		return "seo_scans", nil
	case ToolHeatMap:
		return "heat_maps", nil
	case ToolCitation:
		return "citations", nil
	}
	return "", fmt.Errorf("unknown tool %q", string(t))
}

// Issues is the stored issue list of a scan.
type Issues []string

// SeoScan is a persisted SEO scanner result.
type SeoScan struct {
	ID              string                    `db:"id" json:"id"`
	UserID          string                    `db:"user_id" json:"userId"`
	URL             string                    `db:"url" json:"url"`
	Title           string                    `db:"title" json:"title"`
	MetaDescription *string                   `db:"meta_description" json:"metaDescription"`
	Headings        JSON[analyzer.Headings]   `db:"headings" json:"headings"`
	Images          JSON[analyzer.ImageStats] `db:"images" json:"images"`
	Links           JSON[analyzer.LinkStats]  `db:"links" json:"links"`
	Issues          JSON[Issues]              `db:"issues" json:"issues"`
	Score           int                       `db:"score" json:"score"`
	CreatedAt       time.Time                 `db:"created_at" json:"createdAt"`
}

// Result converts the row back to the scanner response shape.
func (r SeoScan) Result() analyzer.SeoScanResult {
	return analyzer.SeoScanResult{
		URL:             r.URL,
		Title:           r.Title,
		MetaDescription: r.MetaDescription,
		Headings:        r.Headings.V,
		Images:          r.Images.V,
		Links:           r.Links.V,
		Issues:          []string(r.Issues.V),
		Score:           r.Score,
	}
}

// HeatMap is a persisted keyword heat map.
type HeatMap struct {
	ID         string                       `db:"id" json:"id"`
	UserID     string                       `db:"user_id" json:"userId"`
	URL        string                       `db:"url" json:"url"`
	Keywords   JSON[map[string]int]         `db:"keywords" json:"keywords"`
	Details    JSON[[]analyzer.KeywordStat] `db:"details" json:"details"`
	TotalWords int                          `db:"total_words" json:"totalWords"`
	CreatedAt  time.Time                    `db:"created_at" json:"createdAt"`
}

// CitationCheck is a persisted citation checker result.
type CitationCheck struct {
	ID        string                             `db:"id" json:"id"`
	UserID    string                             `db:"user_id" json:"userId"`
	URL       string                             `db:"url" json:"url"`
	Citations JSON[map[string]analyzer.Citation] `db:"citations" json:"citations"`
	Score     int                                `db:"score" json:"score"`
	CreatedAt time.Time                          `db:"created_at" json:"createdAt"`
}

// SaveSeoScan persists result for userID.
func (s *Store) SaveSeoScan(ctx context.Context, userID string, result *analyzer.SeoScanResult) (*SeoScan, error) {
	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("score %d out of range", result.Score)
	}
	issues := Issues(result.Issues)
	if issues == nil {
		issues = Issues{}
	}
	row := &SeoScan{
		ID:              uuid.NewString(),
		UserID:          userID,
		URL:             result.URL,
		Title:           result.Title,
		MetaDescription: result.MetaDescription,
		Headings:        JSON[analyzer.Headings]{V: result.Headings},
		Images:          JSON[analyzer.ImageStats]{V: result.Images},
		Links:           JSON[analyzer.LinkStats]{V: result.Links},
		Issues:          JSON[Issues]{V: issues},
		Score:           result.Score,
		CreatedAt:       timestamp(s.now()),
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(insertSeoScan),
		row.ID, row.UserID, row.URL, row.Title, row.MetaDescription,
		row.Headings, row.Images, row.Links, row.Issues, row.Score, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save seo scan: %w", err)
	}
	return row, nil
}

// ListSeoScans returns the scans of userID created at or after since, newest first.
// A zero since returns the full history.
func (s *Store) ListSeoScans(ctx context.Context, userID string, since time.Time) ([]SeoScan, error) {
	rows := []SeoScan{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectSeoScans), userID, timestamp(since)); err != nil {
		return nil, fmt.Errorf("failed to list seo scans: %w", err)
	}
	return rows, nil
}

// SaveHeatMap persists result for userID.
func (s *Store) SaveHeatMap(ctx context.Context, userID string, result *analyzer.KeywordHeatmapResult) (*HeatMap, error) {
	keywords := result.Keywords
	if keywords == nil {
		keywords = map[string]int{}
	}
	details := result.Details
	if details == nil {
		details = []analyzer.KeywordStat{}
	}
	row := &HeatMap{
		ID:         uuid.NewString(),
		UserID:     userID,
		URL:        result.URL,
		Keywords:   JSON[map[string]int]{V: keywords},
		Details:    JSON[[]analyzer.KeywordStat]{V: details},
		TotalWords: result.TotalWords,
		CreatedAt:  timestamp(s.now()),
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(insertHeatMap),
		row.ID, row.UserID, row.URL, row.Keywords, row.Details, row.TotalWords, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save heat map: %w", err)
	}
	return row, nil
}

// ListHeatMaps returns the heat maps of userID created at or after since, newest first.
func (s *Store) ListHeatMaps(ctx context.Context, userID string, since time.Time) ([]HeatMap, error) {
	rows := []HeatMap{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectHeatMaps), userID, timestamp(since)); err != nil {
		return nil, fmt.Errorf("failed to list heat maps: %w", err)
	}
	return rows, nil
}

// SaveCitationCheck persists result for userID.
func (s *Store) SaveCitationCheck(ctx context.Context, userID string, result *analyzer.CitationResult) (*CitationCheck, error) {
	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("score %d out of range", result.Score)
	}
	citations := result.Citations
	if citations == nil {
		citations = map[string]analyzer.Citation{}
	}
	row := &CitationCheck{
		ID:        uuid.NewString(),
		UserID:    userID,
		URL:       result.URL,
		Citations: JSON[map[string]analyzer.Citation]{V: citations},
		Score:     result.Score,
		CreatedAt: timestamp(s.now()),
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(insertCitationCheck),
		row.ID, row.UserID, row.URL, row.Citations, row.Score, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save citation check: %w", err)
	}
	return row, nil
}

// ListCitationChecks returns the citation checks of userID created at or after since, newest first.
func (s *Store) ListCitationChecks(ctx context.Context, userID string, since time.Time) ([]CitationCheck, error) {
	rows := []CitationCheck{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectCitationChecks), userID, timestamp(since)); err != nil {
		return nil, fmt.Errorf("failed to list citation checks: %w", err)
	}
	return rows, nil
}

// CountResultsSince counts the tool results userID created at or after since.
func (s *Store) CountResultsSince(ctx context.Context, tool Tool, userID string, since time.Time) (int, error) {
	table, err := tool.table()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(fmt.Sprintf(countResultsSince, table)), userID, timestamp(since)); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", tool, err)
	}
	return n, nil
}
