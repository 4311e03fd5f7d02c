package dashboard

import (
	"sort"
	"time"
)

// StartOfWeek returns the most recent Monday at or before t, at midnight in
// t's location.
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if day.Weekday() == time.Sunday {
		return day.AddDate(0, 0, -6)
	}
	return day.AddDate(0, 0, -(int(day.Weekday()) - 1))
}

func IsSameWeek(a, b time.Time) bool {
	return StartOfWeek(a).Equal(StartOfWeek(b))
}

// WeeklyStreak counts consecutive training weeks, walking backwards from the
// week of now. A missing current week is forgiven exactly once, and only at
// the very start of the walk: when the previous week was trained, the streak
// starts there. A gap further back always ends the streak. The asymmetry is
// deliberate and kept as-is.
func WeeklyStreak(now time.Time, workoutDates []time.Time) int {
	if len(workoutDates) == 0 {
		return 0
	}

	weekSet := make(map[time.Time]struct{})
	for _, d := range workoutDates {
		weekSet[StartOfWeek(d)] = struct{}{}
	}

	weeks := make([]time.Time, 0, len(weekSet))
	for w := range weekSet {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].After(weeks[j]) })

	streak := 0
	current := StartOfWeek(now)
	for _, week := range weeks {
		if week.Equal(current) {
			streak++
			current = current.AddDate(0, 0, -7)
			continue
		}
		if streak == 0 && week.Equal(current.AddDate(0, 0, -7)) {
			streak++
			current = week.AddDate(0, 0, -7)
			continue
		}
		break
	}

	return streak
}
