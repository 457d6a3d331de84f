package handler

import (
	"net/http"

	"mindmirror-go/internal/service"

	"github.com/gin-gonic/gin"
)

// ArticleHandler 返回静态的推荐阅读列表。
type ArticleHandler struct {
	service service.ArticleService
}

func NewArticleHandler(service service.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// List 处理 GET /articles。
func (h *ArticleHandler) List(c *gin.Context) {
	articles := h.service.List()
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"count":    len(articles),
		"articles": articles,
	})
}
