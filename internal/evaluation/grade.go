package evaluation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/gradebook-api/internal/models"
)

var letterGrades = map[string]float64{
	"A": 10,
	"B": 8,
	"C": 6,
	"D": 4,
	"E": 2,
}

var qualitativeGrades = map[models.Qualitative]float64{
	models.QualitativeTEA: 9,
	models.QualitativeTEP: 5,
	models.QualitativeTED: 2,
}

// ParsedGrade is the normalised form of a raw grade. A grade with neither
// Value nor Report clears the stored entry.
type ParsedGrade struct {
	Value   *float64
	Report  *models.Qualitative
	Display string
}

// Empty reports whether the parsed grade clears the entry.
func (p ParsedGrade) Empty() bool {
	return p.Value == nil && p.Report == nil
}

// ClampGrade forces v into [MinGrade, MaxGrade].
func ClampGrade(v float64) float64 {
	return math.Min(MaxGrade, math.Max(MinGrade, v))
}

// QualitativeValue returns the numeric weight of a qualitative report in period averages.
func QualitativeValue(q models.Qualitative) (float64, bool) {
	v, ok := qualitativeGrades[q]
	return v, ok
}

// ParseGrade normalises raw teacher input for the given grade kind. Blank input
// yields an empty grade. Unparseable input returns ErrInvalidInput and callers
// decide whether to drop the write.
func ParseGrade(raw string, kind models.GradeKind) (ParsedGrade, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ParsedGrade{}, nil
	}

	switch kind {
	case models.GradeKindExam, models.GradeKindFinalGrade:
		return parseNumeric(text)
	case models.GradeKindAssignment:
		if v, ok := letterGrades[strings.ToUpper(text)]; ok {
			return ParsedGrade{Value: &v, Display: strings.ToUpper(text)}, nil
		}
		return parseNumeric(text)
	case models.GradeKindQualitative, models.GradeKindFinalReport:
		q := models.Qualitative(strings.ToUpper(text))
		if !q.Valid() {
			return ParsedGrade{}, fmt.Errorf("%w: %q is not a qualitative report", ErrInvalidInput, raw)
		}
		return ParsedGrade{Report: &q, Display: string(q)}, nil
	default:
		return ParsedGrade{}, fmt.Errorf("%w: unknown grade kind %q", ErrInvalidInput, kind)
	}
}

func parseNumeric(text string) (ParsedGrade, error) {
	v, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return ParsedGrade{}, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, text)
	}
	v = ClampGrade(v)
	return ParsedGrade{Value: &v, Display: strconv.FormatFloat(v, 'f', -1, 64)}, nil
}

// numericValue is the contribution of an entry to a period average.
func numericValue(e models.GradeEntry) (float64, bool) {
	if e.Value != nil {
		return *e.Value, true
	}
	if e.Report != nil {
		return QualitativeValue(*e.Report)
	}
	return 0, false
}

// PeriodAverage is the unweighted mean of every graded, non-final entry.
// Qualitative entries count through their fixed numeric mapping.
func PeriodAverage(entries []models.GradeEntry) Score {
	var sum float64
	var n int
	for _, e := range entries {
		if e.Kind.IsFinal() {
			continue
		}
		if v, ok := numericValue(e); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return NoScore()
	}
	return ScoreOf(sum / float64(n))
}

// YearlyAverage is the mean of the valid period scores; absent periods are
// left out of the denominator.
func YearlyAverage(periods []Score) Score {
	return MeanScore(periods)
}

// MeanScore averages the valid scores, or returns the sentinel when none is valid.
func MeanScore(scores []Score) Score {
	var sum float64
	var n int
	for _, s := range scores {
		if s.Valid {
			sum += s.Value
			n++
		}
	}
	if n == 0 {
		return NoScore()
	}
	return ScoreOf(sum / float64(n))
}

// IsFailingExam reports whether the entry is a graded exam below the passing grade.
func IsFailingExam(e models.GradeEntry) bool {
	return e.Kind == models.GradeKindExam && e.Value != nil && *e.Value < PassingGrade
}
