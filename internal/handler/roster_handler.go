package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// RosterHandler exposes schools, courses and students.
type RosterHandler struct {
	service *service.RosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

// ListSchools godoc
// @Summary List schools owned by the caller
// @Tags Schools
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schools [get]
func (h *RosterHandler) ListSchools(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	schools, err := h.service.ListSchools(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schools)
}

// GetSchool godoc
// @Summary Get school
// @Tags Schools
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schools/{id} [get]
func (h *RosterHandler) GetSchool(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	school, err := h.service.GetSchool(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, school)
}

// CreateSchool godoc
// @Summary Create school
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body models.SchoolRequest true "School payload"
// @Success 201 {object} response.Envelope
// @Router /schools [post]
func (h *RosterHandler) CreateSchool(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.SchoolRequest
	if !bindJSON(c, &req, "invalid school payload") {
		return
	}
	school, err := h.service.CreateSchool(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// UpdateSchool godoc
// @Summary Update school
// @Tags Schools
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param payload body models.SchoolRequest true "School payload"
// @Success 200 {object} response.Envelope
// @Router /schools/{id} [put]
func (h *RosterHandler) UpdateSchool(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.SchoolRequest
	if !bindJSON(c, &req, "invalid school payload") {
		return
	}
	school, err := h.service.UpdateSchool(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, school)
}

// DeleteSchool godoc
// @Summary Delete school
// @Tags Schools
// @Param id path string true "School ID"
// @Success 204
// @Router /schools/{id} [delete]
func (h *RosterHandler) DeleteSchool(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSchool(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetPeriods godoc
// @Summary Replace the period calendar of a school for one year
// @Tags Schools
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param payload body models.SetPeriodsRequest true "Period ranges"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/periods [put]
func (h *RosterHandler) SetPeriods(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.SetPeriodsRequest
	if !bindJSON(c, &req, "invalid periods payload") {
		return
	}
	periods, err := h.service.SetPeriods(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, periods)
}

// ListCourses godoc
// @Summary List courses of a school
// @Tags Courses
// @Produce json
// @Param id path string true "School ID"
// @Param year query int false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/courses [get]
func (h *RosterHandler) ListCourses(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	year, ok := intQuery(c, "year")
	if !ok {
		return
	}
	courses, err := h.service.ListCourses(c.Request.Context(), actor, c.Param("id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, courses)
}

// GetCourse godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *RosterHandler) GetCourse(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	course, err := h.service.GetCourse(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// CreateCourse godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param payload body models.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /schools/{id}/courses [post]
func (h *RosterHandler) CreateCourse(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.CourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *RosterHandler) UpdateCourse(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.CourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse godoc
// @Summary Delete course
// @Tags Courses
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *RosterHandler) DeleteCourse(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListStudents godoc
// @Summary List students of a course
// @Tags Students
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	students, err := h.service.ListStudents(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students)
}

// CreateStudent godoc
// @Summary Add a student to a course
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/students [post]
func (h *RosterHandler) CreateStudent(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.StudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.service.CreateStudent(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// UpdateStudent godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *RosterHandler) UpdateStudent(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.StudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.service.UpdateStudent(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// DeleteStudent godoc
// @Summary Remove student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *RosterHandler) DeleteStudent(c *gin.Context) {
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
