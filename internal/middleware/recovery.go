package middleware

import (
	"net/http"

	"mindmirror-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// Recovery 捕获 handler 中的 panic，记录详情并返回不含内部信息的 JSON 错误。
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorw("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  "INTERNAL_ERROR",
		})
	})
}
