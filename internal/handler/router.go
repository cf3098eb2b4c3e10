package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes. Reports may be
// nil when exports are disabled.
type Handlers struct {
	Auth         *AuthHandler
	Roster       *RosterHandler
	Grades       *GradeHandler
	Attendance   *AttendanceHandler
	Homework     *HomeworkHandler
	Sanctions    *SanctionHandler
	Remediation  *RemediationHandler
	Topics       *TopicLogHandler
	Pending      *PendingSubjectHandler
	Evaluation   *EvaluationHandler
	Reports      *ReportHandler
	Subscription *SubscriptionHandler
	Metrics      *MetricsHandler
}

// Guards are the middleware applied to authenticated route groups.
type Guards struct {
	Auth         gin.HandlerFunc
	Subscription gin.HandlerFunc
}

// RegisterRoutes mounts the API under prefix and the probes at the root.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, g Guards) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", g.Auth, h.Auth.Logout)
	auth.GET("/me", g.Auth, h.Auth.Me)

	api.POST("/payments/webhook", h.Subscription.Webhook)
	if h.Reports != nil {
		api.GET("/export/:token", h.Reports.Download)
	}

	account := api.Group("", g.Auth)
	account.GET("/subscription", h.Subscription.Current)
	account.POST("/subscription/checkout", h.Subscription.Checkout)

	dash := api.Group("", g.Auth, g.Subscription)

	dash.GET("/schools", h.Roster.ListSchools)
	dash.POST("/schools", h.Roster.CreateSchool)
	dash.GET("/schools/:id", h.Roster.GetSchool)
	dash.PUT("/schools/:id", h.Roster.UpdateSchool)
	dash.DELETE("/schools/:id", h.Roster.DeleteSchool)
	dash.PUT("/schools/:id/periods", h.Roster.SetPeriods)
	dash.GET("/schools/:id/courses", h.Roster.ListCourses)
	dash.POST("/schools/:id/courses", h.Roster.CreateCourse)
	dash.GET("/schools/:id/pending", h.Pending.List)
	dash.POST("/schools/:id/pending", h.Pending.CreateStudent)

	dash.GET("/courses/:id", h.Roster.GetCourse)
	dash.PUT("/courses/:id", h.Roster.UpdateCourse)
	dash.DELETE("/courses/:id", h.Roster.DeleteCourse)
	dash.GET("/courses/:id/students", h.Roster.ListStudents)
	dash.POST("/courses/:id/students", h.Roster.CreateStudent)
	dash.PUT("/students/:id", h.Roster.UpdateStudent)
	dash.DELETE("/students/:id", h.Roster.DeleteStudent)

	dash.GET("/courses/:id/attendance", h.Attendance.List)
	dash.POST("/courses/:id/attendance", h.Attendance.Record)
	dash.DELETE("/attendance/:id", h.Attendance.Delete)

	dash.GET("/courses/:id/assessments", h.Grades.ListAssessments)
	dash.POST("/courses/:id/assessments", h.Grades.CreateAssessment)
	dash.PUT("/assessments/:id", h.Grades.UpdateAssessment)
	dash.DELETE("/assessments/:id", h.Grades.DeleteAssessment)
	dash.GET("/courses/:id/grades", h.Grades.ListGrades)
	dash.PUT("/assessments/:id/grades/:studentId", h.Grades.EnterGrade)
	dash.PUT("/courses/:id/finals/:studentId", h.Grades.SetPeriodFinal)

	dash.GET("/courses/:id/homeworks", h.Homework.List)
	dash.POST("/courses/:id/homeworks", h.Homework.Create)
	dash.PUT("/homeworks/:id", h.Homework.Update)
	dash.DELETE("/homeworks/:id", h.Homework.Delete)
	dash.PUT("/homeworks/:id/status/:studentId", h.Homework.SetStatus)

	dash.GET("/courses/:id/sanctions", h.Sanctions.List)
	dash.POST("/courses/:id/sanctions", h.Sanctions.Create)
	dash.DELETE("/sanctions/:id", h.Sanctions.Delete)

	dash.GET("/courses/:id/remediations", h.Remediation.List)
	dash.POST("/courses/:id/remediations", h.Remediation.Create)
	dash.DELETE("/remediations/:id", h.Remediation.Delete)
	dash.PUT("/remediations/:id/results/:studentId", h.Remediation.SetResult)

	dash.GET("/courses/:id/topics", h.Topics.List)
	dash.POST("/courses/:id/topics", h.Topics.Create)
	dash.PUT("/topics/:id", h.Topics.Update)
	dash.DELETE("/topics/:id", h.Topics.Delete)

	dash.DELETE("/pending/:id", h.Pending.DeleteStudent)
	dash.POST("/pending/:id/exams", h.Pending.CreateExam)
	dash.PUT("/pending-exams/:id/grades/:pendingStudentId", h.Pending.SetGrade)

	dash.GET("/courses/:id/evaluation", h.Evaluation.Course)
	dash.GET("/courses/:id/students/:studentId/narrative", h.Evaluation.Narrative)

	if h.Reports != nil {
		dash.POST("/reports", h.Reports.Create)
		dash.GET("/reports", h.Reports.List)
		dash.GET("/reports/:id", h.Reports.Status)
	}
}
