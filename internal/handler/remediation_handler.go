package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// RemediationHandler exposes remediation exams and their results.
type RemediationHandler struct {
	service *service.RemediationService
}

// NewRemediationHandler constructs the handler.
func NewRemediationHandler(svc *service.RemediationService) *RemediationHandler {
	return &RemediationHandler{service: svc}
}

// List godoc
// @Summary List remediation instances with results
// @Tags Remediation
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/remediations [get]
func (h *RemediationHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	overview, err := h.service.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, overview)
}

// Create godoc
// @Summary Schedule a remediation exam for an exam column
// @Tags Remediation
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.RemediationRequest true "Remediation payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/remediations [post]
func (h *RemediationHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.RemediationRequest
	if !bindJSON(c, &req, "invalid remediation payload") {
		return
	}
	inst, err := h.service.Create(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inst)
}

// Delete godoc
// @Summary Delete a remediation instance
// @Tags Remediation
// @Param id path string true "Remediation ID"
// @Success 204
// @Router /remediations/{id} [delete]
func (h *RemediationHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetResult godoc
// @Summary Store the remediation result of a student
// @Description Approval defaults to grade >= 7 when omitted.
// @Tags Remediation
// @Accept json
// @Produce json
// @Param id path string true "Remediation ID"
// @Param studentId path string true "Student ID"
// @Param payload body models.RemediationResultRequest true "Result"
// @Success 200 {object} response.Envelope
// @Router /remediations/{id}/results/{studentId} [put]
func (h *RemediationHandler) SetResult(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.RemediationResultRequest
	if !bindJSON(c, &req, "invalid remediation result payload") {
		return
	}
	result, err := h.service.SetResult(c.Request.Context(), actor, c.Param("id"), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
