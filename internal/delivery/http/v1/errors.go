package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reminders/internal/service"
)

var errInvalidRequestBody = errors.New("invalid request body")

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// abortWithError maps service errors onto statuses. Anything unknown is
// logged and reported as a plain 500.
func (h *handlerImpl) abortWithError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrCategoryNotFound):
		abort(c, newNotFoundError(err.Error()))
	case errors.Is(err, service.ErrEmptyTitle), errors.Is(err, service.ErrEmptyName):
		abort(c, newBadRequestError(err.Error()))
	case errors.Is(err, service.ErrNotHabit), errors.Is(err, service.ErrCategoryExists):
		abort(c, newConflictError(err.Error()))
	case errors.Is(err, service.ErrNoAnnotator):
		abort(c, newAPIError(http.StatusNotImplemented, err.Error()))
	case errors.Is(err, service.ErrAnnotation):
		h.logger.Warn().Err(err).Msg(msg)
		abort(c, newAPIError(http.StatusBadGateway, service.ErrAnnotation.Error()))
	default:
		h.logger.Error().
			Err(err).
			Msg(msg)
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
