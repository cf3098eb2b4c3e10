package evaluation

import "github.com/noah-isme/gradebook-api/internal/models"

// SuggestInput are the period indicators feeding the qualitative suggestion.
type SuggestInput struct {
	Average     Score
	Attendance  Percent
	Homework    Percent
	Remediation RemediationStatus
}

func (in SuggestInput) empty() bool {
	return !in.Average.Valid && !in.Attendance.Valid && !in.Homework.Valid &&
		(in.Remediation == "" || in.Remediation == StatusNone)
}

// Suggest proposes TEA, TEP or TED. Absent indicators default to a perfect
// value so missing data never penalises a student; "-" is returned only when
// nothing at all is known.
func Suggest(in SuggestInput) models.Qualitative {
	if in.empty() {
		return models.QualitativeNone
	}

	average := MaxGrade
	if in.Average.Valid {
		average = in.Average.Value
	}
	attendance := in.Attendance.Or(100)
	homework := in.Homework.Or(100)

	if attendance < 25 {
		return models.QualitativeTED
	}
	remediationOK := in.Remediation == "" || in.Remediation == StatusNone || in.Remediation == StatusApproved
	if average >= PassingGrade && remediationOK && attendance >= 75 && homework >= 50 {
		return models.QualitativeTEA
	}
	return models.QualitativeTEP
}
