package evaluation

import "github.com/noah-isme/gradebook-api/internal/models"

// HomeworkCompletion is round(100*done/assigned) for one student. Period 0
// considers every assignment. Assignments without a status, or with any
// status other than done, count as not done.
func HomeworkCompletion(assignments []models.Homework, statuses []models.HomeworkStatus, studentID string, period int) Percent {
	done := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		if s.StudentID == studentID && s.Status == models.HomeworkDone {
			done[s.HomeworkID] = true
		}
	}

	var assigned, completed int
	for _, hw := range assignments {
		if period != 0 && hw.Period != period {
			continue
		}
		assigned++
		if done[hw.ID] {
			completed++
		}
	}
	return PercentOf(completed, assigned)
}
