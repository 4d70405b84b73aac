package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-suite/backend/export"
	"github.com/seo-suite/backend/store"
)

func (s *Server) seoScanHistory(c *gin.Context) {
	rows, err := s.store.ListSeoScans(c.Request.Context(), userID(c), time.Time{})
	if err != nil {
		s.writeError(c, err, "Failed to fetch scan history")
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) heatMapHistory(c *gin.Context) {
	rows, err := s.store.ListHeatMaps(c.Request.Context(), userID(c), time.Time{})
	if err != nil {
		s.writeError(c, err, "Failed to fetch heat map history")
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) citationHistory(c *gin.Context) {
	rows, err := s.store.ListCitationChecks(c.Request.Context(), userID(c), time.Time{})
	if err != nil {
		s.writeError(c, err, "Failed to fetch citation history")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// exportHistory streams the caller's full history of one tool as a file.
func (s *Server) exportHistory(tool store.Tool) gin.HandlerFunc {
	return func(c *gin.Context) {
		format, err := export.ParseFormat(c.Query("format"))
		if err != nil {
			s.writeError(c, err, "")
			return
		}

		table, err := s.historyTable(c.Request.Context(), tool, userID(c))
		if err != nil {
			s.writeError(c, err, "Failed to export history")
			return
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, table, format); err != nil {
			s.writeError(c, err, "Failed to export history")
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, table.Filename(format)))
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

func (s *Server) historyTable(ctx context.Context, tool store.Tool, uid string) (*export.Table, error) {
	switch tool {
	case store.ToolSEO:
		rows, err := s.store.ListSeoScans(ctx, uid, time.Time{})
		if err != nil {
			return nil, err
		}
		return export.SeoScanTable(rows), nil
	case store.ToolHeatMap:
		rows, err := s.store.ListHeatMaps(ctx, uid, time.Time{})
		if err != nil {
			return nil, err
		}
		return export.HeatMapTable(rows), nil
	case store.ToolCitation:
		rows, err := s.store.ListCitationChecks(ctx, uid, time.Time{})
		if err != nil {
			return nil, err
		}
		return export.CitationTable(rows), nil
	}
	return nil, fmt.Errorf("unknown tool %q", tool)
}
