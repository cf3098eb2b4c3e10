package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// GradeHandler exposes assessment columns and grade entry.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// ListAssessments godoc
// @Summary List assessment columns of a course
// @Tags Grades
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/assessments [get]
func (h *GradeHandler) ListAssessments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.ListAssessments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// CreateAssessment godoc
// @Summary Create assessment column
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.AssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/assessments [post]
func (h *GradeHandler) CreateAssessment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.AssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	item, err := h.service.CreateAssessment(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateAssessment godoc
// @Summary Update assessment column
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param payload body models.AssessmentRequest true "Assessment payload"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id} [put]
func (h *GradeHandler) UpdateAssessment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.AssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	item, err := h.service.UpdateAssessment(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// DeleteAssessment godoc
// @Summary Delete assessment column and its grades
// @Tags Grades
// @Param id path string true "Assessment ID"
// @Success 204
// @Router /assessments/{id} [delete]
func (h *GradeHandler) DeleteAssessment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAssessment(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListGrades godoc
// @Summary List grade entries of a course
// @Tags Grades
// @Produce json
// @Param id path string true "Course ID"
// @Param period query int false "Period number"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/grades [get]
func (h *GradeHandler) ListGrades(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	period, ok := intQuery(c, "period")
	if !ok {
		return
	}
	grades, err := h.service.ListGrades(c.Request.Context(), actor, c.Param("id"), period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grades)
}

// EnterGrade godoc
// @Summary Enter a raw grade for a student
// @Description Input that does not parse for the column kind is ignored and reported in the result.
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param studentId path string true "Student ID"
// @Param payload body models.EnterGradeRequest true "Raw grade"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/grades/{studentId} [put]
func (h *GradeHandler) EnterGrade(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.EnterGradeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	result, err := h.service.EnterGrade(c.Request.Context(), actor, c.Param("id"), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// SetPeriodFinal godoc
// @Summary Override the final grade or report of a period
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Param payload body models.PeriodFinalRequest true "Override"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/finals/{studentId} [put]
func (h *GradeHandler) SetPeriodFinal(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.PeriodFinalRequest
	if !bindJSON(c, &req, "invalid override payload") {
		return
	}
	result, err := h.service.SetPeriodFinal(c.Request.Context(), actor, c.Param("id"), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
