package cmd

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	now := truncateToDay(time.Now())

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2026-10-21", time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), false},
		{"today", now, false},
		{"Tomorrow", now.AddDate(0, 0, 1), false},
		{"+7d", now.AddDate(0, 0, 7), false},
		{"+0d", now, false},
		{"", time.Time{}, true},
		{"invalid", time.Time{}, true},
		{"+xd", time.Time{}, true},
		{"21.10.2026", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatPickupDate(t *testing.T) {
	tests := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), "Mi. 21. Okt."},
		{time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), "Mo. 2. Nov."},
		{time.Date(2027, 3, 7, 0, 0, 0, 0, time.UTC), "So. 7. März"},
		{time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC), "Fr. 5. Juni"},
	}

	for _, tt := range tests {
		if got := formatPickupDate(tt.day); got != tt.want {
			t.Errorf("formatPickupDate(%s) = %q, want %q", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	today := time.Date(2026, 10, 19, 22, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	pickup := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)

	if got := daysUntil(today, pickup); got != 2 {
		t.Errorf("daysUntil = %d, want 2", got)
	}
	if got := daysUntil(today, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("daysUntil same day = %d, want 0", got)
	}
	// Crossing the end of daylight saving time must not lose a day.
	if got := daysUntil(today, time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)); got != 7 {
		t.Errorf("daysUntil across DST = %d, want 7", got)
	}
}

func TestRelativeDay(t *testing.T) {
	tests := map[int]string{
		-1: "vorbei",
		0:  "heute",
		1:  "morgen",
		2:  "übermorgen",
		9:  "in 9 Tagen",
	}
	for days, want := range tests {
		if got := relativeDay(days); got != want {
			t.Errorf("relativeDay(%d) = %q, want %q", days, got, want)
		}
	}
}
