package billing

import (
	"testing"
	"time"
)

func TestPeriodEnd(t *testing.T) {
	start := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		interval string
		want     time.Time
	}{
		{IntervalMonthly, time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC)},
		{IntervalQuarterly, time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)},
		{IntervalYearly, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)},
		{"WEEKLY", time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := PeriodEnd(start, tc.interval); !got.Equal(tc.want) {
			t.Errorf("PeriodEnd(%s) = %v, want %v", tc.interval, got, tc.want)
		}
	}
}
