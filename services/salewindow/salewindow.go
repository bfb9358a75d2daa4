// Package salewindow decides whether a date falls inside a high-volatility
// commerce window. During those windows cached search results go stale faster
// than the cache TTL, so callers disable caching entirely.
package salewindow

import "time"

// Window is a yearly recurring calendar range. A window whose start month is
// greater than its end month wraps around the turn of the year.
type Window struct {
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
	Name       string
}

// Windows are approximate ranges when list prices churn daily.
var windows = []Window{
	{time.November, 20, time.November, 30, "Black Friday Week"},
	{time.December, 1, time.December, 3, "Cyber Monday"},
	{time.July, 10, time.July, 17, "Prime Day"},
	{time.December, 15, time.December, 26, "Holiday Season"},
	{time.December, 26, time.January, 5, "Post-Holiday Clearance"},
	{time.February, 14, time.February, 21, "Presidents Day"},
	{time.May, 24, time.May, 31, "Memorial Day"},
	{time.September, 1, time.September, 7, "Labor Day"},
}

// defaultTTLHours is the cache lifetime outside sale windows.
const defaultTTLHours = 48

// Active reports whether the given date falls inside a sale window, and the
// window's name if so. Windows are evaluated in declaration order; the first
// match wins.
func Active(at time.Time) (bool, string) {
	month := at.Month()
	day := at.Day()

	for _, w := range windows {
		if w.StartMonth > w.EndMonth {
			// Wraparound window, e.g. Dec 26 - Jan 5.
			if (month == w.StartMonth && day >= w.StartDay) ||
				(month == w.EndMonth && day <= w.EndDay) ||
				month > w.StartMonth || month < w.EndMonth {
				return true, w.Name
			}
			continue
		}
		if month < w.StartMonth || month > w.EndMonth {
			continue
		}
		if month == w.StartMonth && day < w.StartDay {
			continue
		}
		if month == w.EndMonth && day > w.EndDay {
			continue
		}
		return true, w.Name
	}
	return false, ""
}

// CacheTTLHours returns the cache TTL appropriate for the given date.
// Zero means caching is disabled and every search must be fresh.
func CacheTTLHours(at time.Time) int {
	if active, _ := Active(at); active {
		return 0
	}
	return defaultTTLHours
}

// Status is a point-in-time snapshot of the cache policy, for logging and
// admin display.
type Status struct {
	SalePeriod    bool      `json:"is_sale_period"`
	SaleName      string    `json:"sale_name,omitempty"`
	CacheTTLHours int       `json:"cache_ttl_hours"`
	CacheEnabled  bool      `json:"cache_enabled"`
	CheckedAt     time.Time `json:"checked_at"`
}

// StatusAt builds a Status for the given date.
func StatusAt(at time.Time) Status {
	active, name := Active(at)
	ttl := CacheTTLHours(at)
	return Status{
		SalePeriod:    active,
		SaleName:      name,
		CacheTTLHours: ttl,
		CacheEnabled:  ttl > 0,
		CheckedAt:     at,
	}
}
