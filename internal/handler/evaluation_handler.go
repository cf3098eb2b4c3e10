package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/service"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

type courseEvaluator interface {
	EvaluateCourse(ctx context.Context, actor service.Actor, courseID string, year int) (*evaluation.CourseEvaluation, error)
}

type narrativeBuilder interface {
	Build(ctx context.Context, actor service.Actor, courseID, studentID string, year int) (*service.NarrativeReport, error)
	RenderPDF(ctx context.Context, actor service.Actor, courseID, studentID string, year int) ([]byte, string, error)
}

// EvaluationHandler exposes computed evaluations and narrative reports.
type EvaluationHandler struct {
	evaluations courseEvaluator
	narratives  narrativeBuilder
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(evaluations courseEvaluator, narratives narrativeBuilder) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations, narratives: narratives}
}

// Course godoc
// @Summary Evaluate every student of a course
// @Description Period averages, attendance, remediation status and suggested outcomes for one academic year.
// @Tags Evaluation
// @Produce json
// @Param id path string true "Course ID"
// @Param year query int false "Academic year (defaults to the course year)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{id}/evaluation [get]
func (h *EvaluationHandler) Course(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	year, ok := intQuery(c, "year")
	if !ok {
		return
	}
	result, err := h.evaluations.EvaluateCourse(c.Request.Context(), actor, c.Param("id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ResponseMeta(c, map[string]interface{}{
		"year":     result.Year,
		"excluded": result.Excluded,
	})
	response.JSON(c, http.StatusOK, result, nil, meta)
}

// Narrative godoc
// @Summary Narrative report of a student
// @Tags Evaluation
// @Produce json
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Param year query int false "Academic year"
// @Param format query string false "json (default) or pdf"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/students/{studentId}/narrative [get]
func (h *EvaluationHandler) Narrative(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	year, ok := intQuery(c, "year")
	if !ok {
		return
	}
	courseID, studentID := c.Param("id"), c.Param("studentId")

	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "json":
		report, err := h.narratives.Build(c.Request.Context(), actor, courseID, studentID, year)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, report)
	case "pdf":
		data, filename, err := h.narratives.RenderPDF(c.Request.Context(), actor, courseID, studentID, year)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be json or pdf"))
	}
}
