package evaluation

import (
	"encoding/json"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// Source tells whether an outcome was computed or manually saved.
type Source string

const (
	SourceComputed   Source = "computed"
	SourceOverridden Source = "overridden"
)

// Outcome is either a computed value or a manual override of it.
type Outcome[T any] struct {
	value  T
	source Source
}

// Computed wraps a value derived from the records.
func Computed[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, source: SourceComputed}
}

// Overridden wraps a manually saved value.
func Overridden[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, source: SourceOverridden}
}

// Value returns the effective value.
func (o Outcome[T]) Value() T { return o.value }

// Source returns where the value came from.
func (o Outcome[T]) Source() Source {
	if o.source == "" {
		return SourceComputed
	}
	return o.source
}

// IsOverridden reports whether a manual value is in effect.
func (o Outcome[T]) IsOverridden() bool { return o.source == SourceOverridden }

type outcomeJSON[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
}

// MarshalJSON encodes the outcome as {"value": ..., "source": ...}.
func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON[T]{Value: o.value, Source: o.Source()})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (o *Outcome[T]) UnmarshalJSON(data []byte) error {
	var raw outcomeJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.value = raw.Value
	o.source = raw.Source
	return nil
}

// ResolveScore prefers a saved FINAL_GRADE over the computed average.
func ResolveScore(computed Score, override *float64) Outcome[Score] {
	if override != nil {
		return Overridden(ScoreOf(ClampGrade(*override)))
	}
	return Computed(computed)
}

// ResolveReport prefers a saved FINAL_REPORT over the suggestion.
func ResolveReport(suggested models.Qualitative, override *models.Qualitative) Outcome[models.Qualitative] {
	if override != nil && override.Valid() {
		return Overridden(*override)
	}
	return Computed(suggested)
}
