package evaluation

import "github.com/noah-isme/gradebook-api/internal/models"

// AttendancePercentage is round(100*present/total) over the entries dated in
// the range. Justifications are informational and never change the rate.
func AttendancePercentage(entries []models.AttendanceEntry, r PeriodRange) Percent {
	var present, total int
	for _, e := range entries {
		if !r.Contains(e.Date) {
			continue
		}
		total++
		if e.Present {
			present++
		}
	}
	return PercentOf(present, total)
}
