package metrics

import (
	"time"

	"gallery-viewer/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// StatsFunc adapts a function to StatsProvider.
type StatsFunc func() Stats

// GetStats calls f.
func (f StatsFunc) GetStats() Stats { return f() }

// Stats holds the current statistics
type Stats struct {
	ActiveLinks int
	Images      int
	Videos      int
	Connections int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	ShareLinksActive.Set(float64(stats.ActiveLinks))
	MediaFilesTotal.WithLabelValues("image").Set(float64(stats.Images))
	MediaFilesTotal.WithLabelValues("video").Set(float64(stats.Videos))
	DBConnectionsOpen.Set(float64(stats.Connections))

	logging.Debug("Metrics collected: links=%d, images=%d, videos=%d",
		stats.ActiveLinks, stats.Images, stats.Videos)
}
