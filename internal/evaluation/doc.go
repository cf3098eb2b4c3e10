// Package evaluation turns the raw records of a course (grades, attendance,
// homework, sanctions and remediation results) into period averages,
// attendance and homework rates, remediation statuses, suggested qualitative
// reports and narrative text.
//
// Every function is pure: callers load the records and pass the academic year
// and calendar explicitly.
package evaluation
