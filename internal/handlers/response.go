package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListResponse represents a paginated list response
type ListResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    interface{} `json:"meta,omitempty"`
}

func respondSuccess(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, SuccessResponse{Success: true, Data: data, Message: message})
}

func respondList(c *gin.Context, data, meta interface{}) {
	c.JSON(http.StatusOK, ListResponse{Success: true, Data: data, Meta: meta})
}

// respondError maps the service error taxonomy onto HTTP statuses:
// validation 422, not found 404, business rule and constraint conflicts 409,
// store timeouts 504, everything else 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	detail := ErrorDetail{Code: apperr.CodeInternal, Message: "internal server error"}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		detail.Code = appErr.Code
		detail.Message = appErr.Message
		if len(appErr.Fields) > 0 {
			detail.Details = appErr.Fields
		}

		switch appErr.Kind {
		case apperr.KindValidation:
			status = http.StatusUnprocessableEntity
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindBusinessRule, apperr.KindConstraint:
			status = http.StatusConflict
		case apperr.KindStoreTimeout:
			status = http.StatusGatewayTimeout
		default:
			// internal details stay out of the response body
			detail.Message = "internal server error"
			detail.Details = nil
		}
	}

	c.JSON(status, ErrorResponse{Success: false, Error: detail})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    apperr.CodeValidation,
			Message: "invalid request data",
			Details: err.Error(),
		},
	})
}

// isStaff reports whether the authenticated caller holds the staff or admin
// role. Handlers on member-accessible routes use it to gate actions on other
// users' records.
func isStaff(c *gin.Context) bool {
	value, ok := c.Get("user_role")
	if !ok {
		return false
	}
	role, ok := value.(models.UserRole)
	return ok && (role == models.RoleStaff || role == models.RoleAdmin)
}

func respondForbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    "INSUFFICIENT_PERMISSIONS",
			Message: "you do not have permission to access this resource",
		},
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Code:    apperr.CodeValidation,
				Message: "invalid " + name + " parameter",
			},
		})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
