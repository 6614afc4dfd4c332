package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/pkg/errors"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Status  string            `json:"status"`
	Kind    errors.Kind       `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func statusFor(kind errors.Kind) int {
	switch kind {
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindForbidden:
		return http.StatusForbidden
	case errors.KindUnauthorized:
		return http.StatusUnauthorized
	case errors.KindInvalidRequest:
		return http.StatusBadRequest
	case errors.KindUpstreamUnavailable:
		return http.StatusBadGateway
	case errors.KindFulfillmentRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err to its HTTP status. Internal errors are logged and masked.
func respondError(c *gin.Context, err error, logger *zap.Logger) {
	kind := errors.KindOf(err)
	status := statusFor(kind)
	body := ErrorResponse{Status: "error", Kind: kind, Message: err.Error()}

	var verr *errors.ErrValidation
	if stderrors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		body.Message = "internal server error"
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Status: "error", Kind: errors.KindInvalidRequest, Message: message})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

// uuidParam parses a path parameter, writing a 400 when it is not a uuid
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
