// Package service 包含了应用的业务逻辑层。
package service

import "errors"

// 业务错误，由 handler 在边界处统一映射为 HTTP 状态码与错误码。
var (
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrModelUnavailable = errors.New("model could not be loaded")
	ErrInference        = errors.New("inference failed")
	ErrSessionStore     = errors.New("session store unavailable")
)
