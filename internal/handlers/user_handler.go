package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger, publicBaseURL string) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger, publicBaseURL),
		service:     service,
	}
}

// ListUsers lists every user
// @Summary List users
// @Description Admin only. Returns id, role and sub of every user
// @Tags users
// @Produce json
// @Success 200 {array} models.UserSummary
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	users, err := h.service.List(c.Request.Context(), sub)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response := make([]models.UserSummary, 0, len(users))
	for _, user := range users {
		response = append(response, models.UserSummary{ID: user.ID, Role: user.Role, Sub: user.Sub})
	}

	c.JSON(http.StatusOK, response)
}

// GetUser returns one user
// @Summary Get a user
// @Description The user itself or an admin. avatar_url is present when an avatar exists, courses only for instructors and students
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting user", "user_id", id)

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), sub, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response := models.UserResponse{
		ID:   detail.ID,
		Role: detail.Role,
		Sub:  detail.Sub,
	}
	if detail.HasAvatar {
		response.AvatarURL = h.avatarURL(c, detail.ID)
	}
	if detail.Role.HasCourses() {
		links := make([]string, 0, len(detail.Courses))
		for _, courseID := range detail.Courses {
			links = append(links, h.courseURL(c, courseID))
		}
		response.Courses = &links
	}

	c.JSON(http.StatusOK, response)
}

// UploadAvatar creates or replaces the caller's avatar
// @Summary Upload avatar
// @Description Owner only. Multipart form with the image in part "file"
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "User ID"
// @Param file formData file true "PNG image"
// @Success 200 {object} models.AvatarResponse
// @Failure 400 {object} ErrorResponse "No file part"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /users/{id}/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Uploading avatar", "user_id", id)

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	// a missing file part is reported after the ownership check
	var body io.Reader
	if header, err := c.FormFile("file"); err == nil {
		file, err := header.Open()
		if err != nil {
			h.LogError(c, err, "Failed to open uploaded avatar")
			h.respondError(c, http.StatusBadRequest, msgInvalidBody)
			return
		}
		defer file.Close()
		body = file
	}

	if err := h.service.UploadAvatar(c.Request.Context(), sub, id, body); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AvatarResponse{AvatarURL: h.avatarURL(c, id)})
}

// GetAvatar streams the caller's avatar
// @Summary Get avatar
// @Tags users
// @Produce png
// @Param id path int true "User ID"
// @Success 200 {file} binary
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id}/avatar [get]
func (h *UserHandler) GetAvatar(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	blob, err := h.service.GetAvatar(c.Request.Context(), sub, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}

// DeleteAvatar removes the caller's avatar
// @Summary Delete avatar
// @Tags users
// @Param id path int true "User ID"
// @Success 204
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id}/avatar [delete]
func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting avatar", "user_id", id)

	sub, ok := h.subject(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAvatar(c.Request.Context(), sub, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
