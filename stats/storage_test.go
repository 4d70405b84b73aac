package stats

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir, quietLogger())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Shutdown()

	t.Run("Record", func(t *testing.T) {
		storage.Record(ToolSEO, false)
		storage.Record(ToolHeatMap, false)
		storage.Record(ToolHeatMap, true)
		storage.Record(ToolCitation, false)
		stats := storage.GetCurrentStats()

		if stats.SeoScans != 1 {
			t.Errorf("Expected 1 seo scan, got %d", stats.SeoScans)
		}
		if stats.HeatMaps != 2 {
			t.Errorf("Expected 2 heat maps, got %d", stats.HeatMaps)
		}
		if stats.Citations != 1 {
			t.Errorf("Expected 1 citation check, got %d", stats.Citations)
		}
		if stats.Failures != 1 {
			t.Errorf("Expected 1 failure, got %d", stats.Failures)
		}
		if stats.Total() != 4 {
			t.Errorf("Expected total 4, got %d", stats.Total())
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		if err := storage.save(); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		storage2, err := NewStorage(tempDir, quietLogger())
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}
		defer storage2.Shutdown()

		stats := storage2.GetCurrentStats()
		if stats.SeoScans != 1 {
			t.Errorf("Expected 1 seo scan after reload, got %d", stats.SeoScans)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		oldMonth := time.Now().UTC().AddDate(0, -3, 0).Format("2006-01")
		storage.mutex.Lock()
		storage.stats[oldMonth] = &MonthlyStats{SeoScans: 100}
		storage.mutex.Unlock()

		storage.Cleanup(2)

		if _, exists := storage.GetMonthlyStats(oldMonth); exists {
			t.Error("Old stats should have been cleaned up")
		}
		if _, exists := storage.GetMonthlyStats(storage.currentMonth()); !exists {
			t.Error("Current month should be retained")
		}
	})

	t.Run("FileSize", func(t *testing.T) {
		if err := storage.save(); err != nil {
			t.Fatal(err)
		}

		info, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}

		// File should be relatively small (< 1KB for this test data)
		if info.Size() > 1024 {
			t.Errorf("File size too large: %d bytes", info.Size())
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.GetCurrentStats()
		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					storage.Record(ToolCitation, false)
					storage.GetCurrentStats()
				}
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		stats := storage.GetCurrentStats()
		if stats.Citations-before.Citations != 1000 {
			t.Errorf("Expected 1000 more citation checks, got %d", stats.Citations-before.Citations)
		}
	})
}

func TestShutdownFlushes(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewStorage(tempDir, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	storage.Record(ToolSEO, false)

	if err := storage.Shutdown(); err != nil {
		t.Fatalf("Expected clean shutdown, got %v", err)
	}
	if err := storage.Shutdown(); err != nil {
		t.Errorf("Expected second shutdown to be a no-op, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "stats.json")); err != nil {
		t.Errorf("Expected stats file after shutdown, got %v", err)
	}
}

func TestGetAllMonths(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer storage.Shutdown()

	for _, m := range []string{"2026-01", "2026-03", "2025-12"} {
		storage.stats[m] = &MonthlyStats{}
	}
	months := storage.GetAllMonths()
	if len(months) != 3 || months[0] != "2026-03" || months[2] != "2025-12" {
		t.Errorf("Expected newest first, got %v", months)
	}
}

func TestLoadToleratesNullEntries(t *testing.T) {
	for _, content := range []string{`null`, `{"2026-01":null}`} {
		t.Run(content, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "stats.json"), []byte(content), 0644); err != nil {
				t.Fatal(err)
			}

			storage, err := NewStorage(dir, quietLogger())
			if err != nil {
				t.Fatalf("Expected storage to load, got %v", err)
			}
			defer storage.Shutdown()

			storage.Record(ToolSEO, false)
			if got := storage.GetCurrentStats().SeoScans; got != 1 {
				t.Errorf("Expected 1 scan, got %d", got)
			}
			if _, ok := storage.GetMonthlyStats("2026-01"); ok {
				t.Error("Expected null month entries to be dropped")
			}
		})
	}
}
