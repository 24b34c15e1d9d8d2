package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger, ""),
		service:     service,
	}
}

// Login exchanges username and password for a bearer token
// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Failure 502 {object} ErrorResponse "Identity provider failure"
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Login attempt", "client_ip", c.ClientIP())

	req := bindJSON[services.LoginRequest](c)

	token, err := h.service.Login(c.Request.Context(), c.ClientIP(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{Token: token})
}
