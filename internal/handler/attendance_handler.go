package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// AttendanceHandler exposes daily attendance.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance of a course
// @Tags Attendance
// @Produce json
// @Param id path string true "Course ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	entries, err := h.service.List(c.Request.Context(), actor, c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// Record godoc
// @Summary Record one day of attendance for many students
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.RecordAttendanceRequest true "Attendance marks"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.RecordAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	result, err := h.service.Record(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Delete godoc
// @Summary Delete an attendance entry
// @Tags Attendance
// @Param id path string true "Attendance ID"
// @Success 204
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
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
