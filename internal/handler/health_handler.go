package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"mindmirror-go/internal/service"
	"mindmirror-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// HealthHandler 报告服务与模型的状态，并提供前端页面。
type HealthHandler struct {
	chatService service.ChatService
	staticDir   string
}

func NewHealthHandler(chatService service.ChatService, staticDir string) *HealthHandler {
	return &HealthHandler{chatService: chatService, staticDir: staticDir}
}

// Health 处理 GET /health。
func (h *HealthHandler) Health(c *gin.Context) {
	modelStatus := "not loaded"
	if h.chatService.ModelLoaded() {
		modelStatus = "loaded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "running",
		"model_status": modelStatus,
	})
}

// Index 处理 GET /，返回静态目录中的 index.html。
func (h *HealthHandler) Index(c *gin.Context) {
	path := filepath.Join(h.staticDir, "index.html")
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		log.Warnf("index page not available at %s: %v", path, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found", "code": "NOT_FOUND"})
		return
	}
	c.File(path)
}
