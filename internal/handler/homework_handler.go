package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// HomeworkHandler exposes homework assignments.
type HomeworkHandler struct {
	service *service.HomeworkService
}

// NewHomeworkHandler constructs the handler.
func NewHomeworkHandler(svc *service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{service: svc}
}

// List godoc
// @Summary List homework with completion statuses
// @Tags Homework
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/homeworks [get]
func (h *HomeworkHandler) List(c *gin.Context) {
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
// @Summary Assign homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.HomeworkRequest true "Homework payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/homeworks [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.HomeworkRequest
	if !bindJSON(c, &req, "invalid homework payload") {
		return
	}
	hw, err := h.service.Create(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hw)
}

// Update godoc
// @Summary Update homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Homework ID"
// @Param payload body models.HomeworkRequest true "Homework payload"
// @Success 200 {object} response.Envelope
// @Router /homeworks/{id} [put]
func (h *HomeworkHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.HomeworkRequest
	if !bindJSON(c, &req, "invalid homework payload") {
		return
	}
	hw, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, hw)
}

// Delete godoc
// @Summary Delete homework
// @Tags Homework
// @Param id path string true "Homework ID"
// @Success 204
// @Router /homeworks/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
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

// SetStatus godoc
// @Summary Set the completion status of a student
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Homework ID"
// @Param studentId path string true "Student ID"
// @Param payload body models.HomeworkStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /homeworks/{id}/status/{studentId} [put]
func (h *HomeworkHandler) SetStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.HomeworkStatusRequest
	if !bindJSON(c, &req, "invalid homework status payload") {
		return
	}
	status, err := h.service.SetStatus(c.Request.Context(), actor, c.Param("id"), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}
