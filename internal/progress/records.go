package progress

import "math"

// Workout is a single submitted session for one exercise. When Series is
// non-empty it is authoritative and the scalar Load/Reps/Sets are ignored.
type Workout struct {
	Date   string       `json:"date"`
	Load   float64      `json:"load"`
	Reps   int          `json:"reps"`
	Sets   int          `json:"sets"`
	Series []WorkoutSet `json:"series,omitempty"`
}

// TopSet resolves the effective (load, reps, sets) triple of the workout:
// the heaviest series set (load ties broken by more reps) with sets equal to
// the series length, or the scalar values as-is with a minimum of one set.
func (w Workout) TopSet() (load float64, reps, sets int) {
	if len(w.Series) > 0 {
		best := w.Series[0]
		for _, s := range w.Series[1:] {
			if s.Load > best.Load || (s.Load == best.Load && s.Reps > best.Reps) {
				best = s
			}
		}
		return best.Load, best.Reps, len(w.Series)
	}

	sets = w.Sets
	if sets < 1 {
		sets = 1
	}
	return w.Load, w.Reps, sets
}

type Evaluation struct {
	IsRecord  bool             `json:"isRecord"`
	Updated   ExerciseProgress `json:"updated"`
	DeltaLoad float64          `json:"deltaLoad"`
}

// IsPersonalRecord reports whether the candidate beats the current record.
// No record yet means any workout is one. Equal load needs strictly more
// reps (unknown record reps count as beaten).
func IsPersonalRecord(prLoad *float64, prReps *int, load float64, reps int) bool {
	if prLoad == nil {
		return true
	}
	if load > *prLoad {
		return true
	}
	return load == *prLoad && (prReps == nil || reps > *prReps)
}

// Evaluate folds a workout into the previous progress state. It is pure:
// persisting the updated progress, and relocating the workout card on a
// record, is the caller's job. DeltaLoad is measured against the previous
// last recorded load (0 when none), record or not.
func Evaluate(previous ExerciseProgress, workout Workout) Evaluation {
	load, reps, sets := workout.TopSet()

	var previousLast float64
	if previous.LastLoad != nil {
		previousLast = *previous.LastLoad
	}

	entry := WorkoutEntry{
		Date:   workout.Date,
		Load:   load,
		Reps:   reps,
		Sets:   sets,
		Series: workout.Series,
	}

	updated := previous
	updated.LastLoad = &load
	updated.LastReps = &reps
	updated.LastSets = &sets
	updated.LastDate = &entry.Date
	updated.History = append([]WorkoutEntry{entry}, previous.History...)

	isRecord := IsPersonalRecord(previous.PRLoad, previous.PRReps, load, reps)
	if isRecord {
		prLoad, prReps := load, reps
		updated.PRLoad = &prLoad
		updated.PRReps = &prReps
	}

	return Evaluation{
		IsRecord:  isRecord,
		Updated:   updated,
		DeltaLoad: math.Round((load-previousLast)*100) / 100,
	}
}
