package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Tool names counted by Storage. They match the quota keys of the plan table.
const (
	ToolSEO      = "seoScans"
	ToolHeatMap  = "heatMaps"
	ToolCitation = "citations"
)

// MonthlyStats holds the analysis counts of one month across all users.
type MonthlyStats struct {
	SeoScans    int       `json:"seo_scans"`
	HeatMaps    int       `json:"heat_maps"`
	Citations   int       `json:"citations"`
	Failures    int       `json:"failures"`
	LastUpdated time.Time `json:"last_updated"`
}

// Total is the number of analyses run in the month, failed ones included.
func (m MonthlyStats) Total() int {
	return m.SeoScans + m.HeatMaps + m.Citations
}

// Storage handles persistent storage of statistics
type Storage struct {
	mutex       sync.RWMutex
	fileMutex   sync.Mutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	log         *logrus.Logger
	now         func() time.Time
}

// NewStorage creates a new statistics storage instance
func NewStorage(dataDir string, log *logrus.Logger) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

// load reads statistics from file
func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var loaded map[string]*MonthlyStats
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for month, stats := range loaded {
		if stats != nil {
			s.stats[month] = stats
		}
	}
	return nil
}

// save writes statistics to file
func (s *Storage) save() error {
	s.fileMutex.Lock()
	defer s.fileMutex.Unlock()

	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	// Write to temporary file first
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// backgroundWriter handles periodic writes to disk
func (s *Storage) backgroundWriter() {
	defer close(s.stopped)
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			s.saveLogged()
		case <-ticker.C:
			s.saveLogged()
		case <-s.done:
			return
		}
	}
}

func (s *Storage) saveLogged() {
	if err := s.save(); err != nil {
		s.log.WithError(err).Error("Failed to persist statistics")
	}
}

// Shutdown stops the background writer and flushes the counters to disk.
func (s *Storage) Shutdown() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	<-s.stopped
	return s.save()
}

func (s *Storage) currentMonth() string {
	return s.now().Format("2006-01")
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// Buffer full, write already pending
	}
}

// Record counts one analysis of tool. Unknown tools only count as failures
// when failed is set.
func (s *Storage) Record(tool string, failed bool) {
	month := s.currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[month] = stats
	}

	switch tool {
	case ToolSEO:
		stats.SeoScans++
	case ToolHeatMap:
		stats.HeatMaps++
	case ToolCitation:
		stats.Citations++
	}
	if failed {
		stats.Failures++
	}
	stats.LastUpdated = s.now()

	// Request a write if enough time has passed
	if s.now().Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = s.now()
	}
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	month := s.currentMonth()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[month]; exists {
		return *stats
	}
	return MonthlyStats{}
}

// Cleanup removes statistics older than retainMonths months, counting the
// current month. A non-positive value keeps only the current month.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	now := s.now()
	keep := make(map[string]bool, retainMonths)
	for i := 0; i < retainMonths; i++ {
		keep[time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")] = true
	}

	s.mutex.Lock()
	removed := 0
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
			removed++
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
	s.log.WithFields(logrus.Fields{"retain_months": retainMonths, "removed": removed}).Debug("Statistics cleaned up")
}

// GetMonthlyStats returns statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns a sorted list of all months that have statistics
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}

	// Newest first
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}
