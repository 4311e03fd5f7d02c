package dashboard_test

import (
	"testing"
	"time"

	"github.com/2beens/liftprogress/internal/dashboard"

	"github.com/stretchr/testify/assert"
)

// Wednesday 2024-03-13; its week starts Monday 2024-03-11
var testNow = time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStartOfWeek(t *testing.T) {
	monday := day(2024, 3, 11)

	assert.Equal(t, monday, dashboard.StartOfWeek(testNow))
	assert.Equal(t, monday, dashboard.StartOfWeek(monday))
	// Sunday belongs to the week that started six days earlier
	assert.Equal(t, monday, dashboard.StartOfWeek(day(2024, 3, 17)))
	assert.Equal(t, day(2024, 3, 4), dashboard.StartOfWeek(day(2024, 3, 10)))
	// time of day is normalized away
	assert.Equal(t, monday, dashboard.StartOfWeek(time.Date(2024, 3, 16, 23, 59, 59, 0, time.UTC)))
}

func TestIsSameWeek(t *testing.T) {
	assert.True(t, dashboard.IsSameWeek(testNow, day(2024, 3, 11)))
	assert.True(t, dashboard.IsSameWeek(testNow, day(2024, 3, 17)))
	assert.False(t, dashboard.IsSameWeek(testNow, day(2024, 3, 10)))
	assert.False(t, dashboard.IsSameWeek(testNow, day(2024, 3, 18)))
}

func TestWeeklyStreak(t *testing.T) {
	thisMonday := day(2024, 3, 11)
	lastMonday := day(2024, 3, 4)
	twoWeeksAgo := day(2024, 2, 26)
	threeWeeksAgo := day(2024, 2, 19)

	testCases := []struct {
		name     string
		dates    []time.Time
		expected int
	}{
		{name: "no workouts", dates: nil, expected: 0},
		{name: "this week only", dates: []time.Time{thisMonday}, expected: 1},
		{name: "this and last week", dates: []time.Time{thisMonday, lastMonday}, expected: 2},
		{
			name:     "three consecutive weeks",
			dates:    []time.Time{thisMonday, lastMonday, twoWeeksAgo},
			expected: 3,
		},
		{
			// the documented quirk: a missed current week is forgiven once,
			// at the start of the walk only
			name:     "grace week: last week only",
			dates:    []time.Time{lastMonday},
			expected: 1,
		},
		{
			name:     "grace week continues backwards",
			dates:    []time.Time{lastMonday, twoWeeksAgo},
			expected: 2,
		},
		{name: "two weeks ago only", dates: []time.Time{twoWeeksAgo}, expected: 0},
		{
			// no second grace mid-streak
			name:     "gap inside the streak stops the count",
			dates:    []time.Time{thisMonday, twoWeeksAgo, threeWeeksAgo},
			expected: 1,
		},
		{
			name: "multiple workouts in one week count once",
			dates: []time.Time{
				thisMonday, thisMonday.AddDate(0, 0, 2), thisMonday.AddDate(0, 0, 4),
			},
			expected: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, dashboard.WeeklyStreak(testNow, tc.dates))
		})
	}
}
