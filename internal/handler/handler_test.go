package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/payment"
)

var teacherClaims = &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type evaluatorMock struct {
	actor service.Actor
	year  int
	err   error
}

func (m *evaluatorMock) EvaluateCourse(ctx context.Context, actor service.Actor, courseID string, year int) (*evaluation.CourseEvaluation, error) {
	m.actor, m.year = actor, year
	if m.err != nil {
		return nil, m.err
	}
	return &evaluation.CourseEvaluation{CourseID: courseID, Year: 2024, Excluded: 1}, nil
}

type narrativeMock struct{}

func (narrativeMock) Build(ctx context.Context, actor service.Actor, courseID, studentID string, year int) (*service.NarrativeReport, error) {
	return &service.NarrativeReport{StudentID: studentID, Text: "Ana attended 90% of classes."}, nil
}

func (narrativeMock) RenderPDF(ctx context.Context, actor service.Actor, courseID, studentID string, year int) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "narrative-" + studentID + "-2024.pdf", nil
}

func TestEvaluationHandlerCourse(t *testing.T) {
	mock := &evaluatorMock{}
	h := NewEvaluationHandler(mock, narrativeMock{})

	c, w := newGinContext(http.MethodGet, "/courses/c1/evaluation?year=2024", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Course(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.Actor{UserID: "teacher-1", Role: models.RoleTeacher}, mock.actor)
	assert.Equal(t, 2024, mock.year)
	body := decodeEnvelope(t, w)
	assert.Equal(t, float64(1), body["meta"].(map[string]interface{})["excluded"])
	assert.Equal(t, "c1", body["data"].(map[string]interface{})["course_id"])
}

func TestEvaluationHandlerErrors(t *testing.T) {
	h := NewEvaluationHandler(&evaluatorMock{err: appErrors.Clone(appErrors.ErrForbidden, "course belongs to another user")}, narrativeMock{})

	c, w := newGinContext(http.MethodGet, "/courses/c1/evaluation", nil)
	h.Course(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodGet, "/courses/c1/evaluation?year=abc", nil)
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Course(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/courses/c1/evaluation", nil)
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Course(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEvaluationHandlerNarrativeFormats(t *testing.T) {
	h := NewEvaluationHandler(&evaluatorMock{}, narrativeMock{})
	params := gin.Params{{Key: "id", Value: "c1"}, {Key: "studentId", Value: "st1"}}

	c, w := newGinContext(http.MethodGet, "/courses/c1/students/st1/narrative", nil)
	c.Params = params
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Narrative(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "attended 90%")

	c, w = newGinContext(http.MethodGet, "/courses/c1/students/st1/narrative?format=pdf", nil)
	c.Params = params
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Narrative(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "narrative-st1-2024.pdf")

	c, w = newGinContext(http.MethodGet, "/courses/c1/students/st1/narrative?format=docx", nil)
	c.Params = params
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Narrative(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type nopReadSeekCloser struct {
	*bytes.Reader
}

func (nopReadSeekCloser) Close() error { return nil }

type reportServiceMock struct {
	created     models.CreateReportRequest
	download    *service.ReportDownload
	downloadErr error
}

func (m *reportServiceMock) CreateJob(ctx context.Context, actor service.Actor, req models.CreateReportRequest) (*models.ReportJob, error) {
	m.created = req
	return &models.ReportJob{ID: "job-1", Type: req.Type, Status: models.ReportStatusQueued, CreatedBy: actor.UserID}, nil
}

func (m *reportServiceMock) GetStatus(ctx context.Context, actor service.Actor, id string) (*models.ReportJob, error) {
	return &models.ReportJob{ID: id, Status: models.ReportStatusFinished, Progress: 100}, nil
}

func (m *reportServiceMock) ListJobs(ctx context.Context, actor service.Actor, limit int) ([]models.ReportJob, error) {
	return []models.ReportJob{{ID: "job-1"}}, nil
}

func (m *reportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func TestReportHandlerCreate(t *testing.T) {
	mock := &reportServiceMock{}
	h := NewReportHandler(mock)

	payload, _ := json.Marshal(models.CreateReportRequest{Type: models.ReportTypeGradebook, CourseID: "c1", Format: models.ReportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/reports", payload)
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Create(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "c1", mock.created.CourseID)
	assert.Contains(t, w.Body.String(), "QUEUED")

	c, w = newGinContext(http.MethodPost, "/reports", []byte("{"))
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerDownload(t *testing.T) {
	content := []byte("Student,Present\n")
	mock := &reportServiceMock{download: &service.ReportDownload{
		File:      nopReadSeekCloser{bytes.NewReader(content)},
		Filename:  "gradebook-3a-job-1.csv",
		Format:    models.ReportFormatCSV,
		Size:      int64(len(content)),
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	h := NewReportHandler(mock)

	c, w := newGinContext(http.MethodGet, "/export/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}
	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, string(content), w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gradebook-3a-job-1.csv")

	mock.downloadErr = appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	c, w = newGinContext(http.MethodGet, "/export/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}
	h.Download(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type subscriptionServiceMock struct {
	notification payment.Notification
	raw          []byte
	err          error
}

func (m *subscriptionServiceMock) Current(ctx context.Context, userID string) (*models.Subscription, error) {
	return &models.Subscription{UserID: userID, Status: models.SubscriptionExpired}, nil
}

func (m *subscriptionServiceMock) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	return &models.CheckoutResponse{OrderID: "SUB-" + string(req.Plan) + "-x", RedirectURL: "https://pay.example"}, nil
}

func (m *subscriptionServiceMock) HandleNotification(ctx context.Context, n payment.Notification, raw []byte) error {
	m.notification, m.raw = n, raw
	return m.err
}

func TestSubscriptionHandlerWebhook(t *testing.T) {
	mock := &subscriptionServiceMock{}
	h := NewSubscriptionHandler(mock)

	body := []byte(`{"order_id":"SUB-MONTHLY-abc","transaction_status":"settlement","status_code":"200","gross_amount":"50000.00","signature_key":"sig"}`)
	c, w := newGinContext(http.MethodPost, "/payments/webhook", body)
	h.Webhook(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SUB-MONTHLY-abc", mock.notification.OrderID)
	assert.Equal(t, body, mock.raw)

	c, w = newGinContext(http.MethodPost, "/payments/webhook", []byte(`{"transaction_status":"settlement"}`))
	h.Webhook(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mock.err = appErrors.Clone(appErrors.ErrForbidden, "invalid notification signature")
	c, w = newGinContext(http.MethodPost, "/payments/webhook", body)
	h.Webhook(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubscriptionHandlerCheckout(t *testing.T) {
	h := NewSubscriptionHandler(&subscriptionServiceMock{})
	c, w := newGinContext(http.MethodPost, "/subscription/checkout", []byte(`{"plan":"YEARLY"}`))
	c.Set(middleware.ContextUserKey, teacherClaims)
	h.Checkout(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "SUB-YEARLY-x")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestMetricsHandlerReady(t *testing.T) {
	ok := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{
		"postgres": pingerFunc(func(ctx context.Context) error { return nil }),
	})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	ok.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	down := NewMetricsHandler(nil, map[string]Pinger{
		"redis": pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	down.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	down.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
