package dashboard_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/2beens/liftprogress/internal/dashboard"
	"github.com/2beens/liftprogress/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Empty(t *testing.T) {
	snapshot := dashboard.Summarize(testNow, nil, nil, nil)

	assert.Zero(t, snapshot.WorkoutsThisWeek)
	assert.Zero(t, snapshot.WeeklyStreak)
	assert.Nil(t, snapshot.LastPR)
	assert.Nil(t, snapshot.MostImprovedExercise)
	assert.Empty(t, snapshot.Chart)
}

func TestSummarize_WorkoutsThisWeekAndStreak(t *testing.T) {
	workoutDates := []string{
		"2024-03-11", "2024-03-12", // this week
		"2024-03-04", // last week
		"2024-02-26", // two weeks ago
		"not-a-date", // skipped
		"2024-13-99", // skipped, does not parse
	}

	snapshot := dashboard.Summarize(testNow, nil, workoutDates, nil)
	assert.Equal(t, 2, snapshot.WorkoutsThisWeek)
	assert.Equal(t, 3, snapshot.WeeklyStreak)
}

func TestSummarize_NonUTCClock(t *testing.T) {
	// same instant as testNow, expressed in a non-UTC zone; card dates
	// always parse as UTC, so the week math must not depend on the
	// caller's zone
	berlin := time.FixedZone("CET", 60*60)
	localNow := testNow.In(berlin)

	exercises := []progress.ExerciseProgress{
		{
			Name: "Bench Press",
			History: []progress.WorkoutEntry{
				{Date: "2024-03-13", Load: 100, Reps: 5, Sets: 3},
			},
		},
	}

	snapshot := dashboard.Summarize(localNow, exercises, []string{"2024-03-13"}, nil)
	assert.Equal(t, 1, snapshot.WorkoutsThisWeek)
	assert.Equal(t, 1, snapshot.WeeklyStreak)
	assert.Equal(t, 3, snapshot.TotalSetsThisWeek)
	assert.Equal(t, float64(1500), snapshot.TotalVolumeThisWeek)
}

func TestSummarize_MostImproved(t *testing.T) {
	exercises := []progress.ExerciseProgress{
		{
			Name: "Bench Press",
			History: []progress.WorkoutEntry{
				{Date: "2024-03-11", Load: 120, Reps: 5, Sets: 3},
				{Date: "2024-02-12", Load: 100, Reps: 5, Sets: 3},
			},
		},
		{
			Name: "Squat",
			History: []progress.WorkoutEntry{
				{Date: "2024-03-11", Load: 150, Reps: 5, Sets: 3},
				{Date: "2024-02-12", Load: 140, Reps: 5, Sets: 3},
			},
		},
		{
			// single entry, does not qualify
			Name:    "Deadlift",
			History: []progress.WorkoutEntry{{Date: "2024-03-11", Load: 200, Reps: 3, Sets: 1}},
		},
	}

	snapshot := dashboard.Summarize(testNow, exercises, nil, nil)
	require.NotNil(t, snapshot.MostImprovedExercise)
	assert.Equal(t, "Bench Press", snapshot.MostImprovedExercise.ExerciseName)
	assert.Equal(t, float64(20), snapshot.MostImprovedExercise.Delta)
}

func TestSummarize_MostImprovedDeltaRounded(t *testing.T) {
	exercises := []progress.ExerciseProgress{
		{
			Name: "Bench Press",
			History: []progress.WorkoutEntry{
				// 120.1 - 100 carries a float artifact (20.099999...)
				{Date: "2024-03-11", Load: 120.1, Reps: 5, Sets: 3},
				{Date: "2024-02-12", Load: 100, Reps: 5, Sets: 3},
			},
		},
	}

	snapshot := dashboard.Summarize(testNow, exercises, nil, nil)
	require.NotNil(t, snapshot.MostImprovedExercise)
	assert.Equal(t, 20.1, snapshot.MostImprovedExercise.Delta)
}

func TestSummarize_MostImprovedTieKeepsInputOrder(t *testing.T) {
	exercises := []progress.ExerciseProgress{
		{
			Name: "Row",
			History: []progress.WorkoutEntry{
				{Date: "2024-03-11", Load: 90, Reps: 8, Sets: 3},
				{Date: "2024-02-12", Load: 80, Reps: 8, Sets: 3},
			},
		},
		{
			Name: "Press",
			History: []progress.WorkoutEntry{
				{Date: "2024-03-11", Load: 60, Reps: 8, Sets: 3},
				{Date: "2024-02-12", Load: 50, Reps: 8, Sets: 3},
			},
		},
	}

	snapshot := dashboard.Summarize(testNow, exercises, nil, nil)
	require.NotNil(t, snapshot.MostImprovedExercise)
	assert.Equal(t, "Row", snapshot.MostImprovedExercise.ExerciseName)
}

func TestSummarize_LastPR(t *testing.T) {
	recordCards := []dashboard.RecordCard{
		{
			Name:         "2024-03-01 - Squat",
			Desc:         progress.FormatWorkoutDesc("Squat", 140, 3, 1, "2024-03-01"),
			LastActivity: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			Name:         "2024-03-12 - Bench Press",
			Desc:         progress.FormatWorkoutDesc("Bench Press", 100, 2, 1, "2024-03-12"),
			LastActivity: time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
		},
		{
			// most recent activity but hand-mangled body: passed over
			Name:         "scribbles",
			Desc:         "someone edited this card",
			LastActivity: time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC),
		},
	}

	snapshot := dashboard.Summarize(testNow, nil, nil, recordCards)
	require.NotNil(t, snapshot.LastPR)
	assert.Equal(t, "Bench Press", snapshot.LastPR.ExerciseName)
	assert.Equal(t, float64(100), snapshot.LastPR.Load)
	assert.Equal(t, 2, snapshot.LastPR.Reps)
	assert.Equal(t, "2024-03-12", snapshot.LastPR.Date)
}

func TestSummarize_LastPRNoneParse(t *testing.T) {
	snapshot := dashboard.Summarize(testNow, nil, nil, []dashboard.RecordCard{
		{Name: "x", Desc: "garbage", LastActivity: testNow},
	})
	assert.Nil(t, snapshot.LastPR)
}

func TestSummarize_WeekTotals(t *testing.T) {
	exercises := []progress.ExerciseProgress{
		{
			Name: "Bench Press",
			History: []progress.WorkoutEntry{
				{
					Date: "2024-03-12", Load: 100, Reps: 5, Sets: 2,
					Series: []progress.WorkoutSet{{Load: 100, Reps: 5}, {Load: 90, Reps: 8}},
				},
				// previous week, not counted
				{Date: "2024-03-05", Load: 95, Reps: 5, Sets: 3},
			},
		},
		{
			Name: "Squat",
			History: []progress.WorkoutEntry{
				{Date: "2024-03-11", Load: 80, Reps: 10, Sets: 3},
			},
		},
	}

	snapshot := dashboard.Summarize(testNow, exercises, nil, nil)
	assert.Equal(t, 5, snapshot.TotalSetsThisWeek)
	// 100*5 + 90*8 = 1220 from the series, 80*10*3 = 2400 scalar
	assert.Equal(t, float64(3620), snapshot.TotalVolumeThisWeek)
}

func TestSummarize_ChartSortedAndCapped(t *testing.T) {
	var exercises []progress.ExerciseProgress
	for e := 0; e < 3; e++ {
		ex := progress.ExerciseProgress{Name: fmt.Sprintf("exercise-%d", e)}
		// history is stored most recent first
		for i := 11; i >= 0; i-- {
			ex.History = append(ex.History, progress.WorkoutEntry{
				Date: fmt.Sprintf("2024-01-%02d", i+1),
				Load: float64(50 + i),
				Reps: 8,
				Sets: 3,
			})
		}
		exercises = append(exercises, ex)
	}

	snapshot := dashboard.Summarize(testNow, exercises, nil, nil)
	require.Len(t, snapshot.Chart, 20)

	for i := 1; i < len(snapshot.Chart); i++ {
		assert.LessOrEqual(t, snapshot.Chart[i-1].Date, snapshot.Chart[i].Date)
	}

	// the tail of the global series is kept: the newest dates survive
	assert.Equal(t, "2024-01-12", snapshot.Chart[len(snapshot.Chart)-1].Date)
	// within a tied date, exercise input order is preserved
	last3 := snapshot.Chart[len(snapshot.Chart)-3:]
	assert.Equal(t, "exercise-0", last3[0].ExerciseName)
	assert.Equal(t, "exercise-1", last3[1].ExerciseName)
	assert.Equal(t, "exercise-2", last3[2].ExerciseName)
}
