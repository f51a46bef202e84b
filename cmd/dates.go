package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	germanWeekdays = [...]string{"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."}
	germanMonths   = [...]string{"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni", "Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez."}
)

// formatPickupDate renders a pickup day the way German calendars abbreviate it: "Mi. 21. Okt.".
func formatPickupDate(t time.Time) string {
	return fmt.Sprintf("%s %d. %s", germanWeekdays[t.Weekday()], t.Day(), germanMonths[t.Month()-1])
}

// daysUntil counts calendar days from today to day. Pickup days are UTC midnights,
// so today is taken in the local calendar and compared as a date.
func daysUntil(today, day time.Time) int {
	a := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// relativeDay describes a distance in days: "heute", "morgen", "in 3 Tagen".
func relativeDay(days int) string {
	switch {
	case days < 0:
		return "vorbei"
	case days == 0:
		return "heute"
	case days == 1:
		return "morgen"
	case days == 2:
		return "übermorgen"
	default:
		return fmt.Sprintf("in %d Tagen", days)
	}
}

// parseDate handles: "2026-10-21", "today", "tomorrow", "+7d"
func parseDate(input string) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	today := truncateToDay(time.Now())

	switch input {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	// Relative: +7d, +14d
	if strings.HasPrefix(input, "+") && strings.HasSuffix(input, "d") {
		daysStr := input[1 : len(input)-1]
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative date %q: %w", input, err)
		}
		return today.AddDate(0, 0, days), nil
	}

	// Absolute: YYYY-MM-DD
	t, err := time.Parse("2006-01-02", input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today, tomorrow, or +Nd): %w", input, err)
	}
	return t, nil
}

// truncateToDay returns the calendar day of t as a UTC midnight, the form pickup dates use.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
