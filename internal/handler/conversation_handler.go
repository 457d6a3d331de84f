package handler

import (
	"net/http"

	"mindmirror-go/internal/middleware"
	"mindmirror-go/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 处理与会话历史相关的 API 请求。
type ConversationHandler struct {
	chatService service.ChatService
	service     service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
// 重置经由 chatService 执行，以便与进行中的聊天共用会话锁。
func NewConversationHandler(chatService service.ChatService, service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService, service: service}
}

// Reset 处理 POST /reset，清空当前会话的对话历史。
func (h *ConversationHandler) Reset(c *gin.Context) {
	if err := h.chatService.Reset(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		writeStatusError(c, "reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Conversation history cleared successfully",
	})
}

// GetHistory 处理 GET /history，返回当前会话的对话历史。
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	history, err := h.service.History(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		writeStatusError(c, "history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"count":   len(history),
		"history": history.Entries(),
	})
}
