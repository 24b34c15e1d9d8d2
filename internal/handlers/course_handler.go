package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
)

const (
	defaultCourseOffset = 0
	defaultCourseLimit  = 3
)

type CourseHandler struct {
	BaseHandler
	service services.CourseService
}

func NewCourseHandler(service services.CourseService, logger utils.Logger, publicBaseURL string) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger, publicBaseURL),
		service:     service,
	}
}

// ===== CORE CRUD ENDPOINTS =====

// CreateCourse creates a new course
// @Summary Create a course
// @Description Admin only. instructor_id must name an instructor
// @Tags courses
// @Accept json
// @Produce json
// @Param request body services.CreateCourseRequest true "Course creation request"
// @Success 201 {object} models.CourseResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	h.LogRequest(c, "Creating course")

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	req := bindJSON[services.CreateCourseRequest](c)

	course, err := h.service.Create(c.Request.Context(), sub, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.courseResponse(c, course))
}

// ListCourses lists courses ordered by subject
// @Summary List courses
// @Tags courses
// @Produce json
// @Param offset query int false "Offset (default: 0)"
// @Param limit query int false "Page size (default: 3)"
// @Success 200 {object} models.CourseListResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	offset, err := queryInt(c, "offset", defaultCourseOffset)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, msgInvalidQuery)
		return
	}
	limit, err := queryInt(c, "limit", defaultCourseLimit)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, msgInvalidQuery)
		return
	}

	h.LogRequest(c, "Listing courses", "offset", offset, "limit", limit)

	courses, err := h.service.List(c.Request.Context(), offset, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response := models.CourseListResponse{Courses: make([]*models.CourseResponse, 0, len(courses))}
	for _, course := range courses {
		response.Courses = append(response.Courses, h.courseResponse(c, course))
	}
	// a full page may or may not have a successor
	if len(courses) == limit {
		response.Next = fmt.Sprintf("%s/courses?limit=%d&offset=%d", h.baseURL(c), limit, offset+limit)
	}

	c.JSON(http.StatusOK, response)
}

// GetCourse returns one course
// @Summary Get a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.CourseResponse
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.courseResponse(c, course))
}

// UpdateCourse partially updates a course
// @Summary Update a course
// @Description Admin only. Only subject, number, title, term and instructor_id are applied
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body services.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} models.CourseResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /courses/{id} [patch]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating course", "course_id", id)

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	req := bindJSON[services.UpdateCourseRequest](c)

	course, err := h.service.Update(c.Request.Context(), sub, id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.courseResponse(c, course))
}

// DeleteCourse deletes a course and every enrollment in it
// @Summary Delete a course
// @Tags courses
// @Param id path int true "Course ID"
// @Success 204
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", id)

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), sub, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== HELPERS =====

func (h *CourseHandler) courseResponse(c *gin.Context, course *models.Course) *models.CourseResponse {
	return &models.CourseResponse{
		ID:           course.ID,
		Subject:      course.Subject,
		Number:       course.Number,
		Title:        course.Title,
		Term:         course.Term,
		InstructorID: course.InstructorID,
		Self:         h.courseURL(c, course.ID),
	}
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
