package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

type reportService interface {
	CreateJob(ctx context.Context, actor service.Actor, req models.CreateReportRequest) (*models.ReportJob, error)
	GetStatus(ctx context.Context, actor service.Actor, id string) (*models.ReportJob, error)
	ListJobs(ctx context.Context, actor service.Actor, limit int) ([]models.ReportJob, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes asynchronous exports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Create godoc
// @Summary Queue an export
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body models.CreateReportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.CreateReportRequest
	if !bindJSON(c, &req, "invalid report payload") {
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// List godoc
// @Summary List the caller's recent exports
// @Tags Reports
// @Produce json
// @Param limit query int false "Maximum jobs (default 20)"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	if limit == 0 || limit > 100 {
		limit = 20
	}
	jobs, err := h.service.ListJobs(c.Request.Context(), actor, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, jobs)
}

// Status godoc
// @Summary Export status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	job, err := h.service.GetStatus(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

// Download godoc
// @Summary Download an export through its signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.Size, contentType(result.Format), result.File, nil)
}

func contentType(format models.ReportFormat) string {
	switch format {
	case models.ReportFormatPDF:
		return "application/pdf"
	case models.ReportFormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
