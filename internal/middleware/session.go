package middleware

import (
	"net/http"

	"mindmirror-go/pkg/log"
	"mindmirror-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionIDKey = "sessionID"

// SessionCookie 描述会话 cookie 的属性。
type SessionCookie struct {
	Name   string
	Secure bool
}

// Session 从签名 cookie 中恢复会话 ID；cookie 缺失或无效时创建新会话。
// 每次请求都会重新签发 cookie，会话在最后一次活跃后的 TTL 内有效。
func Session(manager *token.SessionManager, cookie SessionCookie) gin.HandlerFunc {
	maxAge := int(manager.TTL().Seconds())

	return func(c *gin.Context) {
		var sessionID string
		if raw, err := c.Cookie(cookie.Name); err == nil && raw != "" {
			if claims, err := manager.VerifyToken(raw); err == nil {
				sessionID = claims.SessionID
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		signed, err := manager.GenerateToken(sessionID)
		if err != nil {
			log.Error("failed to sign session token", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
				"code":  "INTERNAL_ERROR",
			})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, signed, maxAge, "/", "", cookie.Secure, true)

		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID 返回 Session 中间件写入的会话 ID。
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
