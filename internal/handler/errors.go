// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"mindmirror-go/internal/service"
	"mindmirror-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// apologyText 在推理失败时返回给前端展示。
const apologyText = "I'm sorry, I encountered an error. Please try again."

// apiError 是返回给客户端的错误描述，不包含任何内部错误信息。
type apiError struct {
	status  int
	code    string
	message string
}

// classify 将业务错误映射为 HTTP 状态码、错误码与固定文案。
func classify(err error) apiError {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return apiError{http.StatusBadRequest, "VALIDATION_ERROR", "Message cannot be empty"}
	case errors.Is(err, service.ErrModelUnavailable):
		return apiError{http.StatusInternalServerError, "MODEL_UNAVAILABLE", "Model could not be loaded. Please check the logs."}
	case errors.Is(err, service.ErrInference):
		return apiError{http.StatusInternalServerError, "INFERENCE_ERROR", "The assistant could not generate a response."}
	case errors.Is(err, service.ErrSessionStore):
		return apiError{http.StatusInternalServerError, "SESSION_ERROR", "Conversation state is temporarily unavailable."}
	default:
		return apiError{http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"}
	}
}

// logServiceError 在服务端记录完整错误，客户端只看到错误码。
func logServiceError(c *gin.Context, op string, err error, e apiError) {
	if e.status >= http.StatusInternalServerError {
		log.Errorw(op+" failed", "code", e.code, "path", c.Request.URL.Path, "error", err)
		return
	}
	log.Warnw(op+" rejected", "code", e.code, "path", c.Request.URL.Path, "error", err)
}

// writeChatError 使用 /chat 的错误格式：{error, code}，推理类错误附带致歉文本。
func writeChatError(c *gin.Context, err error) {
	e := classify(err)
	logServiceError(c, "chat", err, e)

	body := gin.H{"error": e.message, "code": e.code}
	if e.code == "INFERENCE_ERROR" || e.code == "SESSION_ERROR" || e.code == "INTERNAL_ERROR" {
		body["response"] = apologyText
	}
	c.JSON(e.status, body)
}

// writeStatusError 使用 {status:"error", message, code} 格式。
func writeStatusError(c *gin.Context, op string, err error) {
	e := classify(err)
	logServiceError(c, op, err, e)
	c.JSON(e.status, gin.H{"status": "error", "message": e.message, "code": e.code})
}
