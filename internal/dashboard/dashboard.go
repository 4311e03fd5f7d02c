package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/2beens/liftprogress/internal/progress"
)

// chart keeps the tail of the global, date-ordered point series
const chartMaxPoints = 20

type Snapshot struct {
	WorkoutsThisWeek     int                     `json:"workoutsThisWeek"`
	WeeklyStreak         int                     `json:"weeklyStreak"`
	TotalSetsThisWeek    int                     `json:"totalSetsThisWeek"`
	TotalVolumeThisWeek  float64                 `json:"totalVolumeThisWeek"`
	LastPR               *progress.WorkoutRecord `json:"lastPR"`
	MostImprovedExercise *ImprovedExercise       `json:"mostImprovedExercise"`
	Chart                []ChartPoint            `json:"chart"`
}

type ImprovedExercise struct {
	ExerciseName string  `json:"exerciseName"`
	Delta        float64 `json:"delta"`
}

type ChartPoint struct {
	Date         string  `json:"date"`
	ExerciseName string  `json:"exerciseName"`
	Load         float64 `json:"load"`
	Volume       float64 `json:"volume"`
}

// RecordCard is a raw card from the personal-records collection, still
// carrying its encoded text body.
type RecordCard struct {
	Name         string
	Desc         string
	LastActivity time.Time
}

// Summarize derives the weekly dashboard from already-decoded exercises and
// the raw workout/record cards. Pure: all inputs are materialized, now is
// passed in by the caller.
func Summarize(
	now time.Time,
	exercises []progress.ExerciseProgress,
	workoutDates []string,
	recordCards []RecordCard,
) Snapshot {
	// card dates parse as UTC, the comparison clock must be UTC too
	now = now.UTC()

	snapshot := Snapshot{
		WeeklyStreak: WeeklyStreak(now, parseDates(workoutDates)),
		LastPR:       lastPR(recordCards),
		Chart:        chart(exercises),
	}

	for _, d := range parseDates(workoutDates) {
		if IsSameWeek(now, d) {
			snapshot.WorkoutsThisWeek++
		}
	}

	snapshot.TotalSetsThisWeek, snapshot.TotalVolumeThisWeek = weekTotals(now, exercises)
	snapshot.MostImprovedExercise = mostImproved(exercises)

	return snapshot
}

func parseDates(dates []string) []time.Time {
	parsed := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse(progress.DateFormat, d)
		if err != nil {
			continue
		}
		parsed = append(parsed, t)
	}
	return parsed
}

// mostImproved picks the exercise with the biggest load delta between its
// newest and oldest retained history entries. Exercises with fewer than two
// entries do not qualify; ties keep the earlier exercise (input order).
func mostImproved(exercises []progress.ExerciseProgress) *ImprovedExercise {
	var best *ImprovedExercise
	for _, ex := range exercises {
		if len(ex.History) < 2 {
			continue
		}
		delta := ex.History[0].Load - ex.History[len(ex.History)-1].Load
		// leave only 2 decimals
		delta = math.Round(delta*100) / 100
		if best == nil || delta > best.Delta {
			best = &ImprovedExercise{ExerciseName: ex.Name, Delta: delta}
		}
	}
	return best
}

// lastPR re-extracts the most recent record card's fields from its text
// body; cards that fail to parse are passed over.
func lastPR(recordCards []RecordCard) *progress.WorkoutRecord {
	sorted := make([]RecordCard, len(recordCards))
	copy(sorted, recordCards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastActivity.After(sorted[j].LastActivity)
	})

	for _, card := range sorted {
		if record, ok := progress.ParseWorkoutDesc(card.Desc); ok {
			return &record
		}
	}
	return nil
}

func weekTotals(now time.Time, exercises []progress.ExerciseProgress) (sets int, volume float64) {
	for _, ex := range exercises {
		for _, entry := range ex.History {
			day, err := time.Parse(progress.DateFormat, entry.Date)
			if err != nil || !IsSameWeek(now, day) {
				continue
			}
			sets += entry.Sets
			volume += entry.Volume()
		}
	}
	return sets, volume
}

func chart(exercises []progress.ExerciseProgress) []ChartPoint {
	var points []ChartPoint
	for _, ex := range exercises {
		for _, entry := range ex.History {
			points = append(points, ChartPoint{
				Date:         entry.Date,
				ExerciseName: ex.Name,
				Load:         entry.Load,
				Volume:       entry.Volume(),
			})
		}
	}

	// ISO dates sort lexicographically; stable keeps exercise iteration
	// order within a tied date
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	if len(points) > chartMaxPoints {
		points = points[len(points)-chartMaxPoints:]
	}
	return points
}
