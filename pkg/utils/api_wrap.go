package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	TraceIDKey = "trace_id"
	LoggerKey  = "logger"

	// maxLoggedPayload bounds how much of an upstream payload ends up in a log line.
	maxLoggedPayload = 2048
)

type APIResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Error   string `json:"error,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// PayloadCarrier is implemented by errors that hold the raw upstream content
// which caused them.
type PayloadCarrier interface {
	Payload() string
}

func TraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}

// Logger returns the request scoped logger installed by the request logging
// middleware, or the global logger.
func Logger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(LoggerKey); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.L()
}

func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func RespondError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Error:   message,
		TraceID: TraceID(c),
	})
}

func HandleServiceError(c *gin.Context, err error) {
	logger := Logger(c)

	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		logger.Info("rejected request", zap.Error(err))
		RespondError(c, http.StatusBadRequest, "Invalid request: "+inputErr.Error())
	case errors.Is(err, ErrBadRequest):
		logger.Info("rejected request", zap.Error(err))
		RespondError(c, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, ErrTimeout):
		logger.Warn("completion timed out", zap.Error(err))
		RespondError(c, http.StatusGatewayTimeout, "The analysis service took too long to respond, please try again")
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrInvalidShape):
		logger.Error("unusable completion", zap.Error(err), zap.String("payload", payloadOf(err)))
		RespondError(c, http.StatusInternalServerError, "The analysis service returned an unexpected result")
	case errors.Is(err, ErrUpstreamUnavailable):
		logger.Error("completion service unavailable", zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "The analysis service is temporarily unavailable")
	default:
		logger.Error("unknown error", zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func payloadOf(err error) string {
	var carrier PayloadCarrier
	if !errors.As(err, &carrier) {
		return ""
	}
	p := carrier.Payload()
	if len(p) > maxLoggedPayload {
		return p[:maxLoggedPayload] + "...(truncated)"
	}
	return p
}
