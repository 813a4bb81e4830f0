package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldCaptureNow(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		last          time.Time
		intervalHours float64
		want          bool
	}{
		{"30 minutes ago, hourly interval", now.Add(-30 * time.Minute), 1, false},
		{"90 minutes ago, hourly interval", now.Add(-90 * time.Minute), 1, true},
		{"exactly one interval ago", now.Add(-1 * time.Hour), 1, true},
		{"never captured", time.Time{}, 1, true},
		{"fractional interval", now.Add(-2 * time.Minute), 0.01, true},
		{"future last capture", now.Add(10 * time.Minute), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldCaptureNow(tt.last, now, tt.intervalHours)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	assert.True(t, Expired(now.AddDate(0, 0, -8), now, 7), "8-day-old file is pruned")
	assert.False(t, Expired(now.AddDate(0, 0, -6), now, 7), "6-day-old file is retained")
}
