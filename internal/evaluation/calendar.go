package evaluation

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// PeriodRange is the inclusive date range of one grading period.
type PeriodRange struct {
	Period int
	Start  time.Time
	End    time.Time
}

// Contains reports whether t falls on a day within the range, bounds included.
func (r PeriodRange) Contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(dateOnly(r.Start)) && !d.After(dateOnly(r.End))
}

// Calendar is the period layout of one academic year.
type Calendar struct {
	Year    int
	Scheme  models.PeriodScheme
	Periods []PeriodRange
}

// DefaultCalendar splits the calendar year evenly by months when a school has
// not stored explicit period dates.
func DefaultCalendar(year int, scheme models.PeriodScheme) Calendar {
	count := scheme.PeriodCount()
	if count == 0 {
		scheme = models.PeriodSchemeTrimester
		count = 3
	}
	months := 12 / count
	cal := Calendar{Year: year, Scheme: scheme}
	for i := 0; i < count; i++ {
		start := time.Date(year, time.Month(1+i*months), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, months, -1)
		cal.Periods = append(cal.Periods, PeriodRange{Period: i + 1, Start: start, End: end})
	}
	return cal
}

// NewCalendar builds a calendar from stored periods. Missing periods fall back
// to the default split.
func NewCalendar(year int, scheme models.PeriodScheme, stored []models.SchoolPeriod) (Calendar, error) {
	cal := DefaultCalendar(year, scheme)
	for _, p := range stored {
		if p.Year != year {
			continue
		}
		if p.Period < 1 || p.Period > len(cal.Periods) {
			return Calendar{}, fmt.Errorf("%w: period %d outside %s scheme", ErrInvalidInput, p.Period, cal.Scheme)
		}
		if p.EndsOn.Before(p.StartsOn) {
			return Calendar{}, fmt.Errorf("%w: period %d ends before it starts", ErrInvalidInput, p.Period)
		}
		cal.Periods[p.Period-1] = PeriodRange{Period: p.Period, Start: p.StartsOn, End: p.EndsOn}
	}
	sort.Slice(cal.Periods, func(i, j int) bool { return cal.Periods[i].Period < cal.Periods[j].Period })
	return cal, nil
}

// Period returns the range of period n.
func (c Calendar) Period(n int) (PeriodRange, bool) {
	for _, p := range c.Periods {
		if p.Period == n {
			return p, true
		}
	}
	return PeriodRange{}, false
}

// YearRange spans from the first period start to the last period end.
func (c Calendar) YearRange() PeriodRange {
	if len(c.Periods) == 0 {
		return PeriodRange{
			Start: time.Date(c.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(c.Year, time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	}
	r := PeriodRange{Start: c.Periods[0].Start, End: c.Periods[0].End}
	for _, p := range c.Periods[1:] {
		if p.Start.Before(r.Start) {
			r.Start = p.Start
		}
		if p.End.After(r.End) {
			r.End = p.End
		}
	}
	return r
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
