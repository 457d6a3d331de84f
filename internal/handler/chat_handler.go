package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"mindmirror-go/internal/middleware"
	"mindmirror-go/internal/service"
	"mindmirror-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// maxStreamMessageBytes 限制 WebSocket 单条用户消息的大小，超出时连接以 1009 关闭。
const maxStreamMessageBytes = 8 << 10

// ChatHandler 负责处理聊天请求。
type ChatHandler struct {
	chatService service.ChatService
	upgrader    websocket.Upgrader
}

// NewChatHandler 创建一个新的 ChatHandler，WebSocket 只接受 allowedOrigins 中的来源。
func NewChatHandler(chatService service.ChatService, allowedOrigins []string) *ChatHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &ChatHandler{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true // 非浏览器客户端
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// ChatRequest 定义了聊天 API 的请求体结构。
type ChatRequest struct {
	Message string `json:"message"`
}

// Chat 处理 POST /chat。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	// 无法解析的请求体按空消息处理
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Chat: invalid request payload: %v", err)
	}

	reply, err := h.chatService.Chat(c.Request.Context(), middleware.GetSessionID(c), req.Message)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": reply,
		"status":   "success",
	})
}

// Stream 处理 GET /chat/stream 的 WebSocket 连接，每条文本消息触发一次流式回复。
func (h *ChatHandler) Stream(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxStreamMessageBytes)

	log.Infow("WebSocket 连接已建立", "sessionID", sessionID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
			}
			return
		}

		err = h.chatService.StreamChat(c.Request.Context(), sessionID, string(message), conn)
		if err != nil {
			e := classify(err)
			logServiceError(c, "stream chat", err, e)
			writeFrame(conn, gin.H{"error": e.message, "code": e.code})
		}
		writeFrame(conn, gin.H{
			"type":      "completion",
			"status":    "finished",
			"timestamp": time.Now().UnixMilli(),
		})
	}
}

func writeFrame(conn *websocket.Conn, v interface{}) {
	b, _ := json.Marshal(v)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("写入 WebSocket 消息失败: %v", err)
	}
}
