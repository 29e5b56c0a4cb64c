package response

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/im-delivery/pkg/apperr"
	"github.com/d60-Lab/im-delivery/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Reason  string      `json:"reason,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg, Reason: apperr.ReasonUnauthorized})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: msg})
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: http.StatusTooManyRequests, Message: "too many requests"})
}

// InternalError 500，同时上报 sentry
func InternalError(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	logger.Error("internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: "internal server error", Reason: apperr.ReasonInternal})
}

// Error 按 apperr.Kind 映射状态码
func Error(c *gin.Context, err error) {
	e := apperr.As(err)
	if e == nil || e.Kind == apperr.KindInternal {
		InternalError(c, err)
		return
	}
	status := http.StatusBadRequest
	switch e.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	}
	c.JSON(status, Response{Code: status, Message: e.Message, Reason: e.Reason})
}
