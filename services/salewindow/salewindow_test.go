package salewindow

import (
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestActive(t *testing.T) {
	tests := []struct {
		name     string
		at       time.Time
		want     bool
		wantName string
	}{
		{
			name:     "black friday week",
			at:       date(2026, time.November, 25),
			want:     true,
			wantName: "Black Friday Week",
		},
		{
			name:     "prime day",
			at:       date(2026, time.July, 12),
			want:     true,
			wantName: "Prime Day",
		},
		{
			name: "quiet mid-march",
			at:   date(2026, time.March, 15),
			want: false,
		},
		{
			name: "day before black friday window",
			at:   date(2026, time.November, 19),
			want: false,
		},
		{
			name:     "window start day is inclusive",
			at:       date(2026, time.September, 1),
			want:     true,
			wantName: "Labor Day",
		},
		{
			name:     "window end day is inclusive",
			at:       date(2026, time.May, 31),
			want:     true,
			wantName: "Memorial Day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, name := Active(tt.at)
			if got != tt.want {
				t.Fatalf("Active(%v) = %v, want %v", tt.at, got, tt.want)
			}
			if name != tt.wantName {
				t.Fatalf("Active(%v) name = %q, want %q", tt.at, name, tt.wantName)
			}
		})
	}
}

func TestActiveWraparound(t *testing.T) {
	// Dec 26 - Jan 5 spans the year boundary; both sides must report the
	// same window.
	before, beforeName := Active(date(2026, time.December, 28))
	after, afterName := Active(date(2027, time.January, 3))

	if !before || !after {
		t.Fatalf("wraparound window not active on both sides: dec=%v jan=%v", before, after)
	}
	if beforeName != "Post-Holiday Clearance" || afterName != beforeName {
		t.Fatalf("wraparound names differ: %q vs %q", beforeName, afterName)
	}

	if active, _ := Active(date(2027, time.January, 6)); active {
		t.Fatal("Jan 6 should be outside the clearance window")
	}
}

func TestCacheTTLHours(t *testing.T) {
	if ttl := CacheTTLHours(date(2026, time.November, 25)); ttl != 0 {
		t.Fatalf("sale period TTL = %d, want 0", ttl)
	}
	if ttl := CacheTTLHours(date(2026, time.March, 15)); ttl != 48 {
		t.Fatalf("normal period TTL = %d, want 48", ttl)
	}
}

func TestStatusAt(t *testing.T) {
	st := StatusAt(date(2026, time.March, 15))
	if st.SalePeriod || !st.CacheEnabled || st.CacheTTLHours != 48 {
		t.Fatalf("unexpected status: %+v", st)
	}

	st = StatusAt(date(2026, time.December, 28))
	if !st.SalePeriod || st.CacheEnabled || st.SaleName == "" {
		t.Fatalf("unexpected sale status: %+v", st)
	}
}
