package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/makkenzo/feedbackhub-api/internal/handler/dto"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"go.uber.org/zap"
)

var reasonStatus = map[ierr.Reason]int{
	ierr.ReasonInvalidID:           http.StatusBadRequest,
	ierr.ReasonAuthRequired:        http.StatusUnauthorized,
	ierr.ReasonInvalidEmbedToken:   http.StatusUnauthorized,
	ierr.ReasonProjectNotFound:     http.StatusNotFound,
	ierr.ReasonProjectInactive:     http.StatusForbidden,
	ierr.ReasonSubscriptionExpired: http.StatusPaymentRequired,
	ierr.ReasonProjectLimitReached: http.StatusPaymentRequired,
	ierr.ReasonRateLimited:         http.StatusTooManyRequests,
}

// StatusForReason maps a denial reason to its HTTP status.
func StatusForReason(r ierr.Reason) int {
	if status, ok := reasonStatus[r]; ok {
		return status
	}
	return http.StatusForbidden
}

func ErrorHandlerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("ErrorHandler")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		errResponse := dto.APIErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred.",
		}

		var ve validator.ValidationErrors

		if reason, ok := ierr.ReasonOf(err); ok {
			status = StatusForReason(reason)
			errResponse.Code = string(reason)
			errResponse.Message = reason.Message()
		} else if errors.As(err, &ve) {
			status = http.StatusBadRequest
			errResponse.Code = "VALIDATION_ERROR"
			errResponse.Message = "Input validation failed."
			errResponse.Details = buildValidationErrors(ve)
		} else {
			switch {
			case errors.Is(err, ierr.ErrValidation):
				status = http.StatusBadRequest
				errResponse.Code = "VALIDATION_ERROR"
				errResponse.Message = err.Error()
			case errors.Is(err, ierr.ErrUnauthorized), errors.Is(err, ierr.ErrInvalidToken), errors.Is(err, ierr.ErrTokenInvalidClaims):
				status = http.StatusUnauthorized
				errResponse.Code = string(ierr.ReasonAuthRequired)
				errResponse.Message = ierr.ReasonAuthRequired.Message()
			case errors.Is(err, ierr.ErrNotFound):
				status = http.StatusNotFound
				errResponse.Code = "NOT_FOUND"
				errResponse.Message = "The requested resource was not found."
			case errors.Is(err, ierr.ErrConflict):
				status = http.StatusConflict
				errResponse.Code = "CONFLICT"
				errResponse.Message = err.Error()
			case errors.Is(err, ierr.ErrIntegrity), errors.Is(err, ierr.ErrUpstream):
				errResponse.Code = string(ierr.ReasonFetchError)
				errResponse.Message = ierr.ReasonFetchError.Message()
			}
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("code", errResponse.Code),
			zap.String("path", c.FullPath()),
			zap.String("request_id", RequestID(c)),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", fields...)
		} else {
			log.Info("Request rejected", fields...)
		}

		c.AbortWithStatusJSON(status, errResponse)
	}
}

func buildValidationErrors(ve validator.ValidationErrors) []dto.FieldError {
	details := make([]dto.FieldError, len(ve))
	for i, fe := range ve {
		details[i] = dto.FieldError{
			Field:   fe.Field(),
			Message: getValidationErrorMsg(fe),
		}
	}
	return details
}

func getValidationErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
	case "url":
		return fmt.Sprintf("Field '%s' must be a valid URL", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field '%s' failed validation on the '%s' tag", fe.Field(), fe.Tag())
	}
}
