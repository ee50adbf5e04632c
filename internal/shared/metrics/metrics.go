// Package metrics exposes process counters in Prometheus text format.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	mu       sync.Mutex
	counters = map[string]float64{}

	durationBuckets = []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120}
	durationCounts  = map[string][]uint64{}
	durationSums    = map[string]float64{}
	durationTotals  = map[string]uint64{}
)

// IncCounter adds one to the named counter.
func IncCounter(name string) {
	AddCounter(name, 1)
}

// AddCounter adds delta to the named counter.
func AddCounter(name string, delta float64) {
	mu.Lock()
	defer mu.Unlock()
	counters[name] += delta
}

// ObserveDuration records an elapsed duration into the named histogram.
func ObserveDuration(name string, d time.Duration) {
	seconds := d.Seconds()
	mu.Lock()
	defer mu.Unlock()
	buckets, ok := durationCounts[name]
	if !ok {
		buckets = make([]uint64, len(durationBuckets))
		durationCounts[name] = buckets
	}
	for i, upper := range durationBuckets {
		if seconds <= upper {
			buckets[i]++
		}
	}
	durationSums[name] += seconds
	durationTotals[name]++
}

// Render serializes all metrics as Prometheus exposition text.
func Render() string {
	mu.Lock()
	defer mu.Unlock()

	var b strings.Builder

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "# TYPE %s counter\n", name)
		fmt.Fprintf(&b, "%s %g\n", name, counters[name])
	}

	histNames := make([]string, 0, len(durationCounts))
	for name := range durationCounts {
		histNames = append(histNames, name)
	}
	sort.Strings(histNames)
	for _, name := range histNames {
		fmt.Fprintf(&b, "# TYPE %s histogram\n", name)
		for i, upper := range durationBuckets {
			fmt.Fprintf(&b, "%s_bucket{le=\"%g\"} %d\n", name, upper, durationCounts[name][i])
		}
		fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", name, durationTotals[name])
		fmt.Fprintf(&b, "%s_sum %g\n", name, durationSums[name])
		fmt.Fprintf(&b, "%s_count %d\n", name, durationTotals[name])
	}

	return b.String()
}

// Reset clears all recorded metrics. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	counters = map[string]float64{}
	durationCounts = map[string][]uint64{}
	durationSums = map[string]float64{}
	durationTotals = map[string]uint64{}
}
