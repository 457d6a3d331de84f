// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindmirror-go/internal/config"
	"mindmirror-go/internal/handler"
	"mindmirror-go/internal/middleware"
	"mindmirror-go/internal/model"
	"mindmirror-go/internal/repository"
	"mindmirror-go/internal/service"
	"mindmirror-go/pkg/database"
	"mindmirror-go/pkg/llm"
	"mindmirror-go/pkg/log"
	"mindmirror-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	secret := cfg.Session.Secret
	if secret == "" {
		// 重启后旧 cookie 全部失效
		secret = token.GenerateRandomString(32)
		log.Warnf("session.secret 未配置，已生成临时密钥")
	}

	// 3. 会话存储
	var sessionRepo repository.SessionRepository
	switch cfg.Session.Backend {
	case "redis":
		database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		defer database.CloseRedis()
		sessionRepo = repository.NewRedisSessionRepository(database.RDB, cfg.Session.TTL, cfg.Session.MaxStoredTurns)
	default:
		log.Warnf("使用进程内会话存储，重启后会话历史将丢失")
		sessionRepo = repository.NewMemorySessionRepository(cfg.Session.TTL, cfg.Session.MaxStoredTurns)
	}

	// 4. 可选的对话归档
	var archive repository.ConversationRepository
	if cfg.Database.MySQL.DSN != "" {
		database.InitMySQL(cfg.Database.MySQL.DSN, &model.Conversation{})
		defer database.CloseMySQL()
		archive = repository.NewConversationRepository(database.DB)
	}

	// 5. 模型网关
	gateway := llm.NewGateway(llm.NewClient(cfg.LLM), cfg.LLM)
	log.Infof("Loading model %s from %s ...", cfg.LLM.Model, cfg.LLM.BaseURL)
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if gateway.EnsureReady(startupCtx) {
		log.Info("Model ready")
	} else {
		log.Warnf("Model not ready at startup; loading will be retried on the next chat request")
	}
	cancelStartup()

	// 6. 初始化 Service
	conversationService := service.NewConversationService(sessionRepo, cfg.LLM.Prompt.System, cfg.Conversation.Window)
	chatService := service.NewChatService(gateway, conversationService, archive)
	articleService, err := service.NewArticleService(model.DefaultArticles)
	if err != nil {
		log.Fatal("文章列表无效", err)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// 7. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(handler.RouterDeps{
		ChatService:         chatService,
		ConversationService: conversationService,
		ArticleService:      articleService,
		SessionManager:      token.NewSessionManager(secret, cfg.Session.TTL),
		SessionCookie: middleware.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
		RateLimiter:    limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: r,
	}

	go func() {
		log.Infof("MindMirror 服务启动于 http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
