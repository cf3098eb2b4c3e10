package evaluation

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// ErrInvalidInput is returned when raw grade text cannot be parsed.
var ErrInvalidInput = errors.New("evaluation: invalid input")

const (
	// MinGrade is the lowest numeric grade.
	MinGrade = 0.0
	// MaxGrade is the highest numeric grade.
	MaxGrade = 10.0
	// PassingGrade is the exam threshold; values below it are failing.
	PassingGrade = 7.0
)

// Score is a numeric average. The zero value means "no data" and is distinct
// from a legitimate 0.00 average.
type Score struct {
	Value float64
	Valid bool
}

// NoScore returns the "no data" sentinel.
func NoScore() Score { return Score{} }

// ScoreOf returns a valid score rounded to two decimals.
func ScoreOf(v float64) Score {
	return Score{Value: round2(v), Valid: true}
}

// String renders the score with two decimals or "-" when absent.
func (s Score) String() string {
	if !s.Valid {
		return "-"
	}
	return strconv.FormatFloat(s.Value, 'f', 2, 64)
}

// MarshalJSON encodes absent scores as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts a number or null.
func (s *Score) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*s = NoScore()
		return nil
	}
	*s = Score{Value: *v, Valid: true}
	return nil
}

// Percent is a whole-number rate in [0,100]. The zero value means "no data".
type Percent struct {
	Value int
	Valid bool
}

// NoPercent returns the "no data" sentinel.
func NoPercent() Percent { return Percent{} }

// PercentOf returns round(100*part/total), or the sentinel when total is zero.
func PercentOf(part, total int) Percent {
	if total <= 0 {
		return NoPercent()
	}
	return Percent{Value: int(math.Round(100 * float64(part) / float64(total))), Valid: true}
}

// Or returns the value, or fallback when the percent is absent.
func (p Percent) Or(fallback int) int {
	if !p.Valid {
		return fallback
	}
	return p.Value
}

// String renders "75%" or "-".
func (p Percent) String() string {
	if !p.Valid {
		return "-"
	}
	return strconv.Itoa(p.Value) + "%"
}

// MarshalJSON encodes absent percents as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts an integer or null.
func (p *Percent) UnmarshalJSON(data []byte) error {
	var v *int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*p = NoPercent()
		return nil
	}
	*p = Percent{Value: *v, Valid: true}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
