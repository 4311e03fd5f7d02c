package progress

import (
	"fmt"
	"regexp"
)

// Workout cards (and the personal-record cards they become) carry a small
// labeled document of their own, next to the card name "DATE - exercise".
var workoutDescRe = regexp.MustCompile(`Exercise:\s*(.+)\nLoad:\s*([0-9.,]+)\nReps:\s*(\d+)(?:\nSets:\s*\d+)?\nDate:\s*(\d{4}-\d{2}-\d{2})`)

type WorkoutRecord struct {
	ExerciseName string  `json:"exerciseName"`
	Load         float64 `json:"load"`
	Reps         int     `json:"reps"`
	Date         string  `json:"date"`
}

func FormatWorkoutDesc(exerciseName string, load float64, reps, sets int, date string) string {
	return fmt.Sprintf(
		"Exercise: %s\nLoad: %s\nReps: %d\nSets: %d\nDate: %s",
		exerciseName, formatFloat(load), reps, sets, date,
	)
}

// ParseWorkoutDesc extracts the record summary out of a workout card body.
// The Sets line is optional: cards written before per-set tracking lack it.
func ParseWorkoutDesc(desc string) (WorkoutRecord, bool) {
	m := workoutDescRe.FindStringSubmatch(desc)
	if m == nil {
		return WorkoutRecord{}, false
	}
	return WorkoutRecord{
		ExerciseName: m[1],
		Load:         parseDecimal(m[2]),
		Reps:         mustAtoi(m[3]),
		Date:         m[4],
	}, true
}
