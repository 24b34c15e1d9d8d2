package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
)

// ImageHandler serves the public image store. No authentication.
type ImageHandler struct {
	BaseHandler
	service services.ImageService
}

func NewImageHandler(service services.ImageService, logger utils.Logger) *ImageHandler {
	return &ImageHandler{
		BaseHandler: NewBaseHandler(logger, ""),
		service:     service,
	}
}

// UploadImage stores the multipart part "file". The name is the path
// parameter when given, the uploaded filename otherwise.
// @Summary Upload image
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param name path string false "Image name"
// @Param file formData file true "Image"
// @Success 201 {object} models.ImageResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Router /images [post]
// @Router /images/{name} [post]
func (h *ImageHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	name := c.Param("name")
	if name == "" {
		name = filepath.Base(header.Filename)
	}

	h.LogRequest(c, "Uploading image", "name", name)

	file, err := header.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded image")
		h.respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	defer file.Close()

	if err := h.service.Put(c.Request.Context(), name, header.Header.Get("Content-Type"), file); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ImageResponse{FileName: name})
}

// GetImage
// @Summary Get image
// @Tags images
// @Produce png
// @Param name path string true "Image name"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /images/{name} [get]
func (h *ImageHandler) GetImage(c *gin.Context) {
	blob, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}

// DeleteImage
// @Summary Delete image
// @Tags images
// @Param name path string true "Image name"
// @Success 204
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /images/{name} [delete]
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	h.LogRequest(c, "Deleting image", "name", c.Param("name"))

	if err := h.service.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
