package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Statistics represents the collected request statistics
type Statistics struct {
	UniqueVisitors   map[string]time.Time `json:"uniqueVisitors"`   // IP -> Last Visit Time
	AnalysisRequests int                  `json:"analysisRequests"` // Total number of analysis requests
	ErrorCount       int                  `json:"errorCount"`
	PopularURLs      map[string]int       `json:"popularUrls"` // URL -> Count
	AverageLoadTime  float64              `json:"averageLoadTime"`
	TotalLoadTime    float64              `json:"totalLoadTime"`
	LastPersisted    time.Time            `json:"lastPersisted"`

	path     string
	detailed bool
	mutex    sync.RWMutex
}

// NewStatistics loads statistics from path, starting empty when the file
// does not exist. Detailed statistics include the most analyzed URLs.
func NewStatistics(path string, detailed bool) (*Statistics, error) {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularURLs:    make(map[string]int),
		path:           path,
		detailed:       detailed,
	}
	if err := s.Load(); err != nil {
		return s, err
	}
	return s, nil
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// cleanURL removes query parameters and returns scheme, host and path
func cleanURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return ""
	}

	// Don't track local targets
	if strings.Contains(u.Host, "localhost") || strings.Contains(u.Host, "127.0.0.1") {
		return ""
	}

	cleanURL := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		cleanURL += u.Path
	}

	return strings.TrimSuffix(cleanURL, "/")
}

// TrackAnalysis records an analysis request for target
func (s *Statistics) TrackAnalysis(target string, loadTime float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AnalysisRequests++

	if cleaned := cleanURL(target); cleaned != "" {
		s.PopularURLs[cleaned]++
	}

	if hasError {
		s.ErrorCount++
	}

	s.TotalLoadTime += loadTime
	s.AverageLoadTime = s.TotalLoadTime / float64(s.AnalysisRequests)
}

// Requests returns the number of analysis requests tracked so far
func (s *Statistics) Requests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.AnalysisRequests
}

func (s *Statistics) uniqueVisitorsCount() int {
	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)

	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}

	return count
}

// PopularURL is an analyzed URL with its request count.
type PopularURL struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

func (s *Statistics) popularURLs(n int) []PopularURL {
	all := make([]PopularURL, 0, len(s.PopularURLs))
	for u, freq := range s.PopularURLs {
		all = append(all, PopularURL{URL: u, Count: freq})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].URL < all[j].URL
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func (s *Statistics) errorRate() float64 {
	if s.AnalysisRequests == 0 {
		return 0
	}

	return (float64(s.ErrorCount) / float64(s.AnalysisRequests)) * 100
}

// Save persists the statistics to the configured file
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("could not create statistics file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(s); err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	return nil
}

// Load reads the statistics from the configured file
func (s *Statistics) Load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}
	defer file.Close()

	// Decode aside so a bad file leaves the current statistics untouched.
	var loaded Statistics
	if err := json.NewDecoder(file).Decode(&loaded); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if loaded.UniqueVisitors == nil {
		loaded.UniqueVisitors = make(map[string]time.Time)
	}
	if loaded.PopularURLs == nil {
		loaded.PopularURLs = make(map[string]int)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors = loaded.UniqueVisitors
	s.AnalysisRequests = loaded.AnalysisRequests
	s.ErrorCount = loaded.ErrorCount
	s.PopularURLs = loaded.PopularURLs
	s.AverageLoadTime = loaded.AverageLoadTime
	s.TotalLoadTime = loaded.TotalLoadTime
	s.LastPersisted = loaded.LastPersisted
	return nil
}

// Snapshot returns the public view of the statistics. Popular URLs are
// only included in detailed mode.
func (s *Statistics) Snapshot() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitorsCount(),
		"totalRequests":     s.AnalysisRequests,
		"errorRate":         s.errorRate(),
		"averageLoadTime":   s.AverageLoadTime,
	}
	if s.detailed {
		out["popularUrls"] = s.popularURLs(5)
	}
	return out
}
