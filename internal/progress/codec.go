package progress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The exercise card document has three fixed sections:
//
//	## Last Workout
//	- Load: 82.5
//	- Reps: 8
//	- Sets: 3
//	- Date: 2024-01-15
//
//	## Personal Record
//	- Load: 90
//	- Reps: 5
//
//	## Recent History
//	- 2024-01-15 - 82.5kg x 8 x 3 | Sets: 82.5x8; 80x8; 77.5x10
//	- 2024-01-12 - 80kg x 8 x 3
//
// The body is editable by humans, so decoding is lenient: a field that
// cannot be parsed becomes nil, a history bullet that matches no known
// pattern is skipped. Decode never returns an error.
const (
	sectionLastWorkout    = "Last Workout"
	sectionPersonalRecord = "Personal Record"
	sectionRecentHistory  = "Recent History"

	emptyValue       = "-"
	noWorkoutsBullet = "- No workouts yet"
)

var (
	numberRe        = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)
	leadingDashesRe = regexp.MustCompile(`^-+\s*`)

	// history bullet patterns, most specific first
	historyDetailRe  = regexp.MustCompile(`(?i)^(\d{4}-\d{2}-\d{2})\s*[-|]\s*(\d+(?:[.,]\d+)?)kg\s*x\s*(\d+)\s*x\s*(\d+)\s*\|\s*Sets:\s*(.+)$`)
	historySummaryRe = regexp.MustCompile(`(?i)^(\d{4}-\d{2}-\d{2})\s*[-|]\s*(\d+(?:[.,]\d+)?)kg\s*x\s*(\d+)\s*x\s*(\d+)$`)
	historyLegacyRe  = regexp.MustCompile(`(?i)^(\d{4}-\d{2}-\d{2})\s*[-|]\s*(\d+(?:[.,]\d+)?)kg\s*x\s*(\d+)$`)
	setDetailRe      = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*x\s*(\d+)$`)
)

// Encode renders the exercise progress document. History is re-derived from
// whatever the caller passes, truncated to the HistoryEncodeLimit window.
func Encode(p ExerciseProgress) string {
	lines := []string{
		"## " + sectionLastWorkout,
		"- Load: " + formatOptFloat(p.LastLoad),
		"- Reps: " + formatOptInt(p.LastReps),
		"- Sets: " + formatOptInt(p.LastSets),
		"- Date: " + formatOptString(p.LastDate),
		"",
		"## " + sectionPersonalRecord,
		"- Load: " + formatOptFloat(p.PRLoad),
		"- Reps: " + formatOptInt(p.PRReps),
		"",
		"## " + sectionRecentHistory,
	}

	history := p.History
	if len(history) > HistoryEncodeLimit {
		history = history[:HistoryEncodeLimit]
	}
	if len(history) == 0 {
		lines = append(lines, noWorkoutsBullet)
	}
	for _, entry := range history {
		lines = append(lines, formatHistoryLine(entry))
	}

	return strings.Join(lines, "\n")
}

// Decode parses an exercise progress document. CardID and Name are not part
// of the document and are left for the caller to fill in.
func Decode(desc string) ExerciseProgress {
	var p ExerciseProgress

	section := ""
	for _, line := range strings.Split(desc, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			section = trimmed
			continue
		}

		switch {
		case strings.Contains(section, sectionLastWorkout):
			if strings.HasPrefix(trimmed, "- Load:") {
				p.LastLoad = parseFloatFromLine(trimmed)
			}
			if strings.HasPrefix(trimmed, "- Reps:") {
				p.LastReps = parseIntFromLine(trimmed)
			}
			if strings.HasPrefix(trimmed, "- Sets:") {
				p.LastSets = parseIntFromLine(trimmed)
			}
			if strings.HasPrefix(trimmed, "- Date:") {
				p.LastDate = parseDateValue(strings.TrimPrefix(trimmed, "- Date:"))
			}
		case strings.Contains(section, sectionPersonalRecord):
			if strings.HasPrefix(trimmed, "- Load:") {
				p.PRLoad = parseFloatFromLine(trimmed)
			}
			if strings.HasPrefix(trimmed, "- Reps:") {
				p.PRReps = parseIntFromLine(trimmed)
			}
		case strings.Contains(section, sectionRecentHistory):
			if len(p.History) >= HistoryDecodeLimit {
				continue
			}
			if strings.HasPrefix(trimmed, "-") {
				if entry, ok := parseHistoryLine(trimmed); ok {
					p.History = append(p.History, entry)
				}
			}
		}
	}

	return p
}

func formatHistoryLine(entry WorkoutEntry) string {
	summary := fmt.Sprintf(
		"- %s - %skg x %d x %d",
		entry.Date, formatFloat(entry.Load), entry.Reps, entry.Sets,
	)
	if len(entry.Series) == 0 {
		return summary
	}
	sets := make([]string, 0, len(entry.Series))
	for _, s := range entry.Series {
		sets = append(sets, fmt.Sprintf("%sx%d", formatFloat(s.Load), s.Reps))
	}
	return summary + " | Sets: " + strings.Join(sets, "; ")
}

func parseHistoryLine(line string) (WorkoutEntry, bool) {
	trimmed := leadingDashesRe.ReplaceAllString(strings.TrimSpace(line), "")

	if m := historyDetailRe.FindStringSubmatch(trimmed); m != nil {
		return WorkoutEntry{
			Date:   m[1],
			Load:   parseDecimal(m[2]),
			Reps:   mustAtoi(m[3]),
			Sets:   mustAtoi(m[4]),
			Series: parseSeriesDetail(m[5]),
		}, true
	}
	if m := historySummaryRe.FindStringSubmatch(trimmed); m != nil {
		return WorkoutEntry{
			Date: m[1],
			Load: parseDecimal(m[2]),
			Reps: mustAtoi(m[3]),
			Sets: mustAtoi(m[4]),
		}, true
	}
	// legacy two-field form, written before sets were tracked
	if m := historyLegacyRe.FindStringSubmatch(trimmed); m != nil {
		return WorkoutEntry{
			Date: m[1],
			Load: parseDecimal(m[2]),
			Reps: mustAtoi(m[3]),
			Sets: 1,
		}, true
	}

	return WorkoutEntry{}, false
}

func parseSeriesDetail(detail string) []WorkoutSet {
	var series []WorkoutSet
	for _, part := range strings.Split(detail, ";") {
		m := setDetailRe.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		series = append(series, WorkoutSet{
			Load: parseDecimal(m[1]),
			Reps: mustAtoi(m[2]),
		})
	}
	return series
}

// parseFloatFromLine extracts the first numeric token of the line,
// accepting both comma and dot decimal separators. Nil when there is none.
func parseFloatFromLine(line string) *float64 {
	match := numberRe.FindString(line)
	if match == "" {
		return nil
	}
	f := parseDecimal(match)
	return &f
}

func parseIntFromLine(line string) *int {
	f := parseFloatFromLine(line)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func parseDateValue(value string) *string {
	normalized := leadingDashesRe.ReplaceAllString(strings.TrimSpace(value), "")
	normalized = strings.TrimSpace(normalized)
	if normalized == "" || normalized == emptyValue {
		return nil
	}
	return &normalized
}

func parseDecimal(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return f
}

// mustAtoi is safe on regex-validated digit groups only
func mustAtoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptFloat(f *float64) string {
	if f == nil {
		return emptyValue
	}
	return formatFloat(*f)
}

func formatOptInt(i *int) string {
	if i == nil {
		return emptyValue
	}
	return strconv.Itoa(*i)
}

func formatOptString(s *string) string {
	if s == nil {
		return emptyValue
	}
	return *s
}
