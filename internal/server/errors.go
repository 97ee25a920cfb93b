package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/estatehub/internal/common"
)

// unavailableMessage is what callers see for any unclassified failure.
const unavailableMessage = "unable to load"

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// statusOf maps the error taxonomy to HTTP statuses.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, common.CodeValidation
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, common.CodeNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, common.CodeConflict
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, common.CodeForbidden
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, common.CodeUnauthorized
	}
	return http.StatusInternalServerError, common.CodeInternal
}

func abortWithError(c *gin.Context, logger *slog.Logger, err error) {
	status, code := statusOf(err)
	msg := unavailableMessage
	if status == http.StatusInternalServerError {
		attrs := append(common.LogFields(c.Request.Context()),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		logger.Error("request failed", attrs...)
	} else {
		msg = common.MessageOf(err, http.StatusText(status))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorBody{
		Code:      code,
		Message:   msg,
		RequestID: common.RequestIDFromContext(c.Request.Context()),
	})
}
