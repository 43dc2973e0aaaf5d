package cache

import "github.com/prometheus/client_golang/prometheus"

type collector struct {
	cache *LRUCache

	hits        *prometheus.Desc
	misses      *prometheus.Desc
	evictions   *prometheus.Desc
	expirations *prometheus.Desc
	size        *prometheus.Desc
}

// NewCollector exposes the cache statistics as prometheus metrics.
func NewCollector(namespace, subsystem string, c *LRUCache) prometheus.Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
	}
	return &collector{
		cache:       c,
		hits:        desc("hits_total", "Total number of cache hits."),
		misses:      desc("misses_total", "Total number of cache misses."),
		evictions:   desc("evictions_total", "Entries dropped because the cache was full."),
		expirations: desc("expirations_total", "Entries dropped because their TTL passed."),
		size:        desc("entries", "Current number of cached entries."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.expirations
	ch <- c.size
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.expirations, prometheus.CounterValue, float64(s.Expirations))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
}
