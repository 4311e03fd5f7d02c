package progress

// DateFormat is the calendar date layout used across cards and documents.
const DateFormat = "2006-01-02"

// History retention is asymmetric on purpose: decode keeps up to 12 entries,
// the next encode writes back only 5. Hand-edited documents that grew past
// the window shrink back only when the card is written again.
const (
	HistoryDecodeLimit = 12
	HistoryEncodeLimit = 5
)

type WorkoutSet struct {
	Load float64 `json:"load"`
	Reps int     `json:"reps"`
}

type WorkoutEntry struct {
	Date string  `json:"date"`
	Load float64 `json:"load"`
	Reps int     `json:"reps"`
	Sets int     `json:"sets"`
	// Series, when present, is the authoritative per-set detail;
	// Load/Reps/Sets above are the derived summary of its heaviest set
	Series []WorkoutSet `json:"series,omitempty"`
}

// ExerciseProgress is the durable state of one exercise, round-tripping
// through the text body of a single card. Nil fields mean "not recorded yet".
type ExerciseProgress struct {
	CardID   string         `json:"cardId"`
	Name     string         `json:"name"`
	LastLoad *float64       `json:"lastLoad"`
	LastReps *int           `json:"lastReps"`
	LastSets *int           `json:"lastSets"`
	LastDate *string        `json:"lastDate"`
	PRLoad   *float64       `json:"prLoad"`
	PRReps   *int           `json:"prReps"`
	History  []WorkoutEntry `json:"history"`
}

// Volume is the total kilos moved by the entry: the sum of load x reps over
// the series when per-set detail exists, load x reps x sets otherwise.
func (e WorkoutEntry) Volume() float64 {
	if len(e.Series) > 0 {
		var total float64
		for _, s := range e.Series {
			total += s.Load * float64(s.Reps)
		}
		return total
	}
	return e.Load * float64(e.Reps) * float64(e.Sets)
}
