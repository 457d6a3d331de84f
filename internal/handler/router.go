package handler

import (
	"net/http"

	"mindmirror-go/internal/middleware"
	"mindmirror-go/internal/service"
	"mindmirror-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// RouterDeps 汇总注册路由所需的依赖。
type RouterDeps struct {
	ChatService         service.ChatService
	ConversationService service.ConversationService
	ArticleService      service.ArticleService
	SessionManager      *token.SessionManager
	SessionCookie       middleware.SessionCookie
	RateLimiter         *middleware.RateLimiter
	AllowedOrigins      []string
	StaticDir           string
}

// NewRouter 创建 Gin 引擎并注册全部路由。
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.CORS(d.AllowedOrigins),
		middleware.Session(d.SessionManager, d.SessionCookie),
	)

	healthHandler := NewHealthHandler(d.ChatService, d.StaticDir)
	chatHandler := NewChatHandler(d.ChatService, d.AllowedOrigins)
	conversationHandler := NewConversationHandler(d.ChatService, d.ConversationService)
	articleHandler := NewArticleHandler(d.ArticleService)

	r.GET("/", healthHandler.Index)
	r.GET("/health", healthHandler.Health)
	r.GET("/articles", articleHandler.List)

	chat := r.Group("/chat")
	if d.RateLimiter != nil {
		chat.Use(d.RateLimiter.Middleware())
	}
	{
		chat.POST("", chatHandler.Chat)
		chat.GET("/stream", chatHandler.Stream)
	}

	r.POST("/reset", conversationHandler.Reset)
	r.GET("/history", conversationHandler.GetHistory)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "code": "NOT_FOUND"})
	})
	return r
}
