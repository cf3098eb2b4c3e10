package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// SanctionHandler exposes disciplinary sanctions.
type SanctionHandler struct {
	service *service.SanctionService
}

// NewSanctionHandler constructs the handler.
func NewSanctionHandler(svc *service.SanctionService) *SanctionHandler {
	return &SanctionHandler{service: svc}
}

// List godoc
// @Summary List sanctions of a course
// @Tags Sanctions
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/sanctions [get]
func (h *SanctionHandler) List(c *gin.Context) {
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
// @Summary Record a sanction
// @Tags Sanctions
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.SanctionRequest true "Sanction payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/sanctions [post]
func (h *SanctionHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.SanctionRequest
	if !bindJSON(c, &req, "invalid sanction payload") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Delete godoc
// @Summary Delete a sanction
// @Tags Sanctions
// @Param id path string true "Sanction ID"
// @Success 204
// @Router /sanctions/{id} [delete]
func (h *SanctionHandler) Delete(c *gin.Context) {
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
