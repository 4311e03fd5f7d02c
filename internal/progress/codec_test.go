package progress_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/2beens/liftprogress/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }

func TestEncode_EmptyProgress(t *testing.T) {
	doc := progress.Encode(progress.ExerciseProgress{})
	assert.Equal(t, `## Last Workout
- Load: -
- Reps: -
- Sets: -
- Date: -

## Personal Record
- Load: -
- Reps: -

## Recent History
- No workouts yet`, doc)
}

func TestEncode_FullDocument(t *testing.T) {
	p := progress.ExerciseProgress{
		LastLoad: floatPtr(82.5),
		LastReps: intPtr(8),
		LastSets: intPtr(3),
		LastDate: strPtr("2024-01-15"),
		PRLoad:   floatPtr(90),
		PRReps:   intPtr(5),
		History: []progress.WorkoutEntry{
			{
				Date: "2024-01-15", Load: 82.5, Reps: 8, Sets: 3,
				Series: []progress.WorkoutSet{{Load: 82.5, Reps: 8}, {Load: 80, Reps: 10}},
			},
			{Date: "2024-01-12", Load: 80, Reps: 8, Sets: 3},
		},
	}

	doc := progress.Encode(p)
	assert.Contains(t, doc, "- Load: 82.5\n- Reps: 8\n- Sets: 3\n- Date: 2024-01-15")
	assert.Contains(t, doc, "## Personal Record\n- Load: 90\n- Reps: 5")
	assert.Contains(t, doc, "- 2024-01-15 - 82.5kg x 8 x 3 | Sets: 82.5x8; 80x10")
	assert.Contains(t, doc, "- 2024-01-12 - 80kg x 8 x 3")
	assert.NotContains(t, doc, "No workouts yet")
}

func TestRoundTrip_WithinRetainedWindow(t *testing.T) {
	p := progress.ExerciseProgress{
		LastLoad: floatPtr(102.5),
		LastReps: intPtr(5),
		LastSets: intPtr(4),
		LastDate: strPtr("2024-02-02"),
		PRLoad:   floatPtr(110),
		PRReps:   intPtr(3),
		History: []progress.WorkoutEntry{
			{
				Date: "2024-02-02", Load: 102.5, Reps: 5, Sets: 4,
				Series: []progress.WorkoutSet{
					{Load: 102.5, Reps: 5}, {Load: 100, Reps: 6},
					{Load: 97.5, Reps: 8}, {Load: 95, Reps: 8},
				},
			},
			{Date: "2024-01-29", Load: 100, Reps: 5, Sets: 3},
			{Date: "2024-01-26", Load: 100, Reps: 4, Sets: 3},
			{Date: "2024-01-22", Load: 97.5, Reps: 6, Sets: 3},
			{Date: "2024-01-19", Load: 95, Reps: 8, Sets: 1},
		},
	}

	decoded := progress.Decode(progress.Encode(p))
	assert.Equal(t, p, decoded)
}

func TestRoundTrip_HistoryTruncatedToEncodeLimit(t *testing.T) {
	var p progress.ExerciseProgress
	for i := 0; i < 9; i++ {
		p.History = append(p.History, progress.WorkoutEntry{
			Date: fmt.Sprintf("2024-01-%02d", 20-i),
			Load: 80 + float64(i),
			Reps: 8,
			Sets: 3,
		})
	}

	decoded := progress.Decode(progress.Encode(p))
	require.Len(t, decoded.History, progress.HistoryEncodeLimit)
	assert.Equal(t, p.History[:progress.HistoryEncodeLimit], decoded.History)
}

func TestDecode_HistoryCappedAtDecodeLimit(t *testing.T) {
	lines := []string{"## Recent History"}
	for i := 0; i < progress.HistoryDecodeLimit+5; i++ {
		lines = append(lines, fmt.Sprintf("- 2024-01-01 - %dkg x 8 x 3", 50+i))
	}

	decoded := progress.Decode(strings.Join(lines, "\n"))
	assert.Len(t, decoded.History, progress.HistoryDecodeLimit)
	assert.Equal(t, float64(50), decoded.History[0].Load)
}

func TestDecode_LegacyTwoFieldLine(t *testing.T) {
	decoded := progress.Decode("## Recent History\n- 2024-01-01 - 80kg x 10")
	require.Len(t, decoded.History, 1)
	assert.Equal(t, progress.WorkoutEntry{
		Date: "2024-01-01", Load: 80, Reps: 10, Sets: 1,
	}, decoded.History[0])
}

func TestDecode_CommaDecimalSeparator(t *testing.T) {
	doc := `## Last Workout
- Load: 82,5
- Reps: 8
- Sets: 3
- Date: 2024-01-15

## Personal Record
- Load: 90,25
- Reps: 5

## Recent History
- 2024-01-15 - 82,5kg x 8 x 3 | Sets: 82,5x8; 80x10`

	decoded := progress.Decode(doc)
	require.NotNil(t, decoded.LastLoad)
	assert.Equal(t, 82.5, *decoded.LastLoad)
	require.NotNil(t, decoded.PRLoad)
	assert.Equal(t, 90.25, *decoded.PRLoad)
	require.Len(t, decoded.History, 1)
	assert.Equal(t, 82.5, decoded.History[0].Load)
	assert.Equal(t, []progress.WorkoutSet{{Load: 82.5, Reps: 8}, {Load: 80, Reps: 10}}, decoded.History[0].Series)
}

func TestDecode_MalformedFieldsDegradeToNil(t *testing.T) {
	doc := `## Last Workout
- Load: heavy
- Reps: -
- Sets: 3
- Date: -

## Personal Record
- Load:
- Reps: five

## Recent History
- some scribbled note
- 2024-01-10 - 60kg x 12 x 2
not a bullet at all`

	decoded := progress.Decode(doc)
	assert.Nil(t, decoded.LastLoad)
	assert.Nil(t, decoded.LastReps)
	require.NotNil(t, decoded.LastSets)
	assert.Equal(t, 3, *decoded.LastSets)
	assert.Nil(t, decoded.LastDate)
	assert.Nil(t, decoded.PRLoad)
	assert.Nil(t, decoded.PRReps)
	require.Len(t, decoded.History, 1)
	assert.Equal(t, float64(60), decoded.History[0].Load)
}

func TestDecode_IgnoresLinesOutsideKnownSections(t *testing.T) {
	doc := `- Load: 120
## Warmup Notes
- Load: 55
## Personal Record
- Load: 90
- Reps: 5`

	decoded := progress.Decode(doc)
	assert.Nil(t, decoded.LastLoad)
	require.NotNil(t, decoded.PRLoad)
	assert.Equal(t, float64(90), *decoded.PRLoad)
}

func TestDecode_EmptyDocument(t *testing.T) {
	decoded := progress.Decode("")
	assert.Nil(t, decoded.LastLoad)
	assert.Empty(t, decoded.History)
}

func TestWorkoutDesc_RoundTrip(t *testing.T) {
	desc := progress.FormatWorkoutDesc("Bench Press", 82.5, 8, 3, "2024-01-15")
	assert.Equal(t, "Exercise: Bench Press\nLoad: 82.5\nReps: 8\nSets: 3\nDate: 2024-01-15", desc)

	record, ok := progress.ParseWorkoutDesc(desc)
	require.True(t, ok)
	assert.Equal(t, progress.WorkoutRecord{
		ExerciseName: "Bench Press", Load: 82.5, Reps: 8, Date: "2024-01-15",
	}, record)
}

func TestWorkoutDesc_ParseWithoutSetsLine(t *testing.T) {
	record, ok := progress.ParseWorkoutDesc("Exercise: Squat\nLoad: 120,5\nReps: 5\nDate: 2024-01-15")
	require.True(t, ok)
	assert.Equal(t, 120.5, record.Load)
	assert.Equal(t, "Squat", record.ExerciseName)
}

func TestWorkoutDesc_ParseGarbage(t *testing.T) {
	_, ok := progress.ParseWorkoutDesc("nothing to see here")
	assert.False(t, ok)
}

func TestVolume(t *testing.T) {
	withSeries := progress.WorkoutEntry{
		Load: 100, Reps: 5, Sets: 2,
		Series: []progress.WorkoutSet{{Load: 100, Reps: 5}, {Load: 90, Reps: 8}},
	}
	assert.Equal(t, float64(1220), withSeries.Volume())

	scalar := progress.WorkoutEntry{Load: 80, Reps: 10, Sets: 3}
	assert.Equal(t, float64(2400), scalar.Volume())
}
