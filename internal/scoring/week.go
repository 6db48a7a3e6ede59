package scoring

import (
	"fmt"
	"sort"
	"time"
)

// Week keys use ISO-8601 week numbering: the week containing the
// year's first Thursday is week 1 and weeks start on Monday. The
// day grids elsewhere use a Sunday-start display convention; the two
// never mix.

// WeekKey maps a date to its "{ISO-year}-W{ISO-week}" ledger key.
func WeekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%d", y, w)
}

// LastWeekKey is the ledger key for the week before t.
func LastWeekKey(t time.Time) string {
	return WeekKey(t.AddDate(0, 0, -7))
}

// SameWeek reports whether two dates fall in the same ISO week.
func SameWeek(a, b time.Time) bool {
	return WeekKey(a) == WeekKey(b)
}

// ParseWeekKey splits a ledger key back into ISO year and week number.
func ParseWeekKey(key string) (year, week int, err error) {
	if _, err = fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("invalid week key %q: %w", key, err)
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("invalid week key %q: week out of range", key)
	}
	return year, week, nil
}

// isoWeekMonday returns the Monday starting the given ISO week.
// January 4th is always inside ISO week 1.
func isoWeekMonday(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	return monday.AddDate(0, 0, (week-1)*7)
}

// WeekWindow returns the Sunday-start display window covering the
// given ISO week: the Sunday before its Monday through the following
// Saturday.
func WeekWindow(key string) (sunday, saturday time.Time, err error) {
	year, week, err := ParseWeekKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	monday := isoWeekMonday(year, week)
	sunday = monday.AddDate(0, 0, -1)
	saturday = monday.AddDate(0, 0, 5)
	return sunday, saturday, nil
}

// SortWeekKeys orders ledger keys chronologically, newest first.
// Keys carry unpadded week numbers, so a plain string sort would place
// W9 after W10.
func SortWeekKeys(keys []string) {
	rank := func(key string) int {
		y, w, err := ParseWeekKey(key)
		if err != nil {
			return -1
		}
		return y*100 + w
	}
	sort.Slice(keys, func(i, j int) bool {
		return rank(keys[i]) > rank(keys[j])
	})
}
