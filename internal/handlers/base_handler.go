package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
)

// Error messages returned in the "Error" field
const (
	msgInvalidBody   = "The request body is invalid"
	msgInvalidQuery  = "Invalid query parameters"
	msgUnauthorized  = "Unauthorized"
	msgForbidden     = "You don't have permission on this resource"
	msgNotFound      = "Not found"
	msgConflict      = "Enrollment data is invalid"
	msgTooMany       = "Too many login attempts"
	msgUpstream      = "An upstream service failed"
	msgInternalError = "Internal server error"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"Error"`
}

// BaseHandler carries what every resource handler needs
type BaseHandler struct {
	logger        utils.Logger
	publicBaseURL string
}

func NewBaseHandler(logger utils.Logger, publicBaseURL string) BaseHandler {
	return BaseHandler{logger: logger, publicBaseURL: strings.TrimSuffix(publicBaseURL, "/")}
}

// LogRequest logs the start of a handler with the request logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Debug(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c, h.logger).Error(msg, args...)
}

func (h *BaseHandler) respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// handleServiceError maps service errors onto status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors
	var rateErr *services.RateLimitError

	switch {
	case errors.As(err, &validationErrs):
		h.LogRequest(c, "Request rejected by validation", "errors", validationErrs.Error())
		h.respondError(c, http.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, services.ErrInvalidBody):
		h.respondError(c, http.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, services.ErrInvalidQuery):
		h.respondError(c, http.StatusBadRequest, msgInvalidQuery)
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidCredentials):
		h.respondError(c, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		h.LogRequest(c, "Permission denied", "reason", err.Error())
		h.respondError(c, http.StatusForbidden, msgForbidden)
	case errors.Is(err, services.ErrNotFound):
		h.respondError(c, http.StatusNotFound, msgNotFound)
	case errors.Is(err, services.ErrEnrollmentConflict):
		h.LogRequest(c, "Enrollment rejected", "reason", err.Error())
		h.respondError(c, http.StatusConflict, msgConflict)
	case errors.As(err, &rateErr):
		c.Header("Retry-After", strconv.Itoa(rateErr.RetryAfter))
		h.respondError(c, http.StatusTooManyRequests, msgTooMany)
	case errors.Is(err, services.ErrUpstream):
		h.LogError(c, err, "Upstream failure")
		h.respondError(c, http.StatusBadGateway, msgUpstream)
	default:
		h.LogError(c, err, "Unexpected service error")
		h.respondError(c, http.StatusInternalServerError, msgInternalError)
	}
}

// parseIDParam reads a positive integer path parameter. Anything else does
// not name a resource and answers 404; the returned id is 0 then.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) int64 {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, http.StatusNotFound, msgNotFound)
		return 0
	}
	return id
}

// bindJSON decodes the request body. It returns nil when the body is not
// valid JSON for T so services can reject it after their permission checks.
func bindJSON[T any](c *gin.Context) *T {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil
	}
	return &req
}

// subject returns the caller's subject placed by the auth middleware
func (h *BaseHandler) subject(c *gin.Context) (string, bool) {
	sub, err := GetSubjectFromContext(c)
	if err != nil {
		h.respondError(c, http.StatusUnauthorized, msgUnauthorized)
		return "", false
	}
	return sub, true
}

// baseURL is the configured public URL or, without one, the scheme and
// host the request came in on
func (h *BaseHandler) baseURL(c *gin.Context) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}

	scheme := "http"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	} else if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

func (h *BaseHandler) courseURL(c *gin.Context, id int64) string {
	return fmt.Sprintf("%s/courses/%d", h.baseURL(c), id)
}

func (h *BaseHandler) avatarURL(c *gin.Context, userID int64) string {
	return fmt.Sprintf("%s/users/%d/avatar", h.baseURL(c), userID)
}
