// internal/pkg/response/response.go
package response

import (
	"net/http"

	xerrors "lumen-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response. Only sentinel error text is
// exposed to clients; wrapped causes stay in the logs.
func Error(c *gin.Context, code int, message string, err error) {
	c.Abort()

	resp := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		resp.Error = sentinelText(err)
	}

	c.JSON(code, resp)
}

// FromError maps a service error to the matching HTTP status.
func FromError(c *gin.Context, message string, err error) {
	Error(c, StatusFor(err), message, err)
}

// StatusFor maps sentinel errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case xerrors.Is(err, xerrors.ErrInvalidInput), xerrors.Is(err, xerrors.ErrInvalidPlan):
		return http.StatusBadRequest
	case xerrors.Is(err, xerrors.ErrUnauthorized), xerrors.Is(err, xerrors.ErrSessionExpired):
		return http.StatusUnauthorized
	case xerrors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case xerrors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case xerrors.Is(err, xerrors.ErrConflict), xerrors.Is(err, xerrors.ErrDuplicateEntry):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// sentinelText returns the sentinel part of a wrapped error, or a generic
// message for unexpected failures.
func sentinelText(err error) string {
	for _, sentinel := range []error{
		xerrors.ErrNotFound,
		xerrors.ErrUnauthorized,
		xerrors.ErrForbidden,
		xerrors.ErrInvalidInput,
		xerrors.ErrInvalidPlan,
		xerrors.ErrConflict,
		xerrors.ErrSessionExpired,
		xerrors.ErrDuplicateEntry,
		xerrors.ErrProviderUnavailable,
	} {
		if xerrors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return xerrors.ErrInternal.Error()
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, xerrors.ErrUnauthorized)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, xerrors.ErrForbidden)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, xerrors.ErrNotFound)
}

// Conflict sends a 409 Conflict response.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message, xerrors.ErrConflict)
}
