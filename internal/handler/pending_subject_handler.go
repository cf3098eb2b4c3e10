package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// PendingSubjectHandler exposes students owing subjects from earlier years.
type PendingSubjectHandler struct {
	service *service.PendingSubjectService
}

// NewPendingSubjectHandler constructs the handler.
func NewPendingSubjectHandler(svc *service.PendingSubjectService) *PendingSubjectHandler {
	return &PendingSubjectHandler{service: svc}
}

// List godoc
// @Summary List pending students of a school
// @Tags Pending subjects
// @Produce json
// @Param id path string true "School ID"
// @Param year query int false "Current academic year"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/pending [get]
func (h *PendingSubjectHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	year, ok := intQuery(c, "year")
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, c.Param("id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// CreateStudent godoc
// @Summary Register a pending student
// @Tags Pending subjects
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param payload body models.PendingStudentRequest true "Pending student"
// @Success 201 {object} response.Envelope
// @Router /schools/{id}/pending [post]
func (h *PendingSubjectHandler) CreateStudent(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.PendingStudentRequest
	if !bindJSON(c, &req, "invalid pending student payload") {
		return
	}
	item, err := h.service.CreateStudent(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// DeleteStudent godoc
// @Summary Remove a pending student
// @Tags Pending subjects
// @Param id path string true "Pending student ID"
// @Success 204
// @Router /pending/{id} [delete]
func (h *PendingSubjectHandler) DeleteStudent(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.DeleteStudent(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateExam godoc
// @Summary Schedule a pending exam
// @Tags Pending subjects
// @Accept json
// @Produce json
// @Param id path string true "Pending student ID"
// @Param payload body models.PendingExamRequest true "Exam"
// @Success 201 {object} response.Envelope
// @Router /pending/{id}/exams [post]
func (h *PendingSubjectHandler) CreateExam(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.PendingExamRequest
	if !bindJSON(c, &req, "invalid pending exam payload") {
		return
	}
	exam, err := h.service.CreateExam(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// SetGrade godoc
// @Summary Store the grade of a pending exam
// @Tags Pending subjects
// @Accept json
// @Produce json
// @Param id path string true "Pending exam ID"
// @Param pendingStudentId path string true "Pending student ID"
// @Param payload body models.PendingGradeRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Router /pending-exams/{id}/grades/{pendingStudentId} [put]
func (h *PendingSubjectHandler) SetGrade(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.PendingGradeRequest
	if !bindJSON(c, &req, "invalid pending grade payload") {
		return
	}
	grade, err := h.service.SetGrade(c.Request.Context(), actor, c.Param("id"), c.Param("pendingStudentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}
