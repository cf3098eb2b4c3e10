package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// TopicLogHandler exposes the class diary.
type TopicLogHandler struct {
	service *service.TopicLogService
}

// NewTopicLogHandler constructs the handler.
func NewTopicLogHandler(svc *service.TopicLogService) *TopicLogHandler {
	return &TopicLogHandler{service: svc}
}

// List godoc
// @Summary List topic log entries of a course
// @Tags Topics
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/topics [get]
func (h *TopicLogHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Create godoc
// @Summary Add a topic log entry
// @Tags Topics
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.TopicLogRequest true "Entry"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/topics [post]
func (h *TopicLogHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.TopicLogRequest
	if !bindJSON(c, &req, "invalid topic log payload") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update a topic log entry
// @Tags Topics
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body models.TopicLogRequest true "Entry"
// @Success 200 {object} response.Envelope
// @Router /topics/{id} [put]
func (h *TopicLogHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.TopicLogRequest
	if !bindJSON(c, &req, "invalid topic log payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Delete godoc
// @Summary Delete a topic log entry
// @Tags Topics
// @Param id path string true "Entry ID"
// @Success 204
// @Router /topics/{id} [delete]
func (h *TopicLogHandler) Delete(c *gin.Context) {
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
