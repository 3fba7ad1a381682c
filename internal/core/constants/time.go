package constants

import "time"

const (
	// Live-tail buffer and windowing
	WatchCapacity      = 128
	WatchLookback      = 10 * time.Second
	WatchLookbackMS    = int64(WatchLookback / time.Millisecond)
	DefaultWatchPeriod = 10 * time.Second

	// Relative timestamps switch from ms to s at this delta
	RelativeSecondsThresholdMS = 500

	// Session colour palette size
	PaletteSize = 6
)

// WatchIntervals lists the poll intervals a watch session accepts.
var WatchIntervals = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
}

// IsWatchInterval reports whether d is one of WatchIntervals.
func IsWatchInterval(d time.Duration) bool {
	for _, allowed := range WatchIntervals {
		if d == allowed {
			return true
		}
	}
	return false
}
