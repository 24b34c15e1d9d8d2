package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EnrollmentHandler struct {
	BaseHandler
	service services.EnrollmentService
}

func NewEnrollmentHandler(service services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler: NewBaseHandler(logger, ""),
		service:     service,
	}
}

// UpdateEnrollment adds and removes students
// @Summary Update enrollment
// @Description Admin or the course's instructor. Ids in add and remove must be students and must not overlap
// @Tags enrollment
// @Accept json
// @Param id path int true "Course ID"
// @Param request body services.UpdateEnrollmentRequest true "Students to add and remove"
// @Success 200
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Enrollment data is invalid"
// @Router /courses/{id}/students [patch]
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating enrollment", "course_id", id)

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	req := bindJSON[services.UpdateEnrollmentRequest](c)

	if err := h.service.Update(c.Request.Context(), sub, id, req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// ListEnrollment lists the ids of enrolled students
// @Summary List enrolled students
// @Tags enrollment
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {array} int
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /courses/{id}/students [get]
func (h *EnrollmentHandler) ListEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	ids, err := h.service.List(c.Request.Context(), sub, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ids)
}

// ExportRoster downloads the enrolled students as a spreadsheet
// @Summary Export roster
// @Tags enrollment
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Course ID"
// @Success 200 {file} binary
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /courses/{id}/students/export [get]
func (h *EnrollmentHandler) ExportRoster(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting roster", "course_id", id)

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	data, err := h.service.ExportRoster(c.Request.Context(), sub, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="course-%d-roster.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, data)
}
