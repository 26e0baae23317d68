package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses. Error carries a
// language-neutral kind; translating it is the client's job.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "internal_error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// StatusFor maps an error kind to the HTTP status the request layer answers with.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindNotFound, KindPromotionNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindUnitUnavailable:
		return http.StatusConflict
	case KindInvalidRange, KindBelowMinimumStay, KindPromotionInactive, KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// JSONError sends a standardized JSON error response for err. Application
// errors keep their kind; anything else is reported as internal.
func JSONError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := StatusFor(appErr.Kind)
		logger.Warn("request rejected",
			zap.String("kind", string(appErr.Kind)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, ErrorResponse{Error: string(appErr.Kind), Field: appErr.Field})
		return
	}
	logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
}
