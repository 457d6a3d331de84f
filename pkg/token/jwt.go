// Package token 提供了用于签发和验证会话 cookie 中 JSON Web Token 的功能。
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionManager 负责管理会话 token 的生成和验证。
type SessionManager struct {
	secretKey []byte        // secretKey 用于签名和验证 token 的密钥
	ttl       time.Duration // ttl 定义了 token 的有效期
}

// SessionClaims 定义了会话 token 中携带的数据。
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSessionManager 创建一个新的 SessionManager 实例。
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secretKey: []byte(secret),
		ttl:       ttl,
	}
}

// TTL 返回 token 的有效期，cookie 的 Max-Age 与之保持一致。
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// GenerateToken 为给定的会话 ID 签发新的 token。每次请求都会重新签发，从而实现按活跃时间续期。
func (m *SessionManager) GenerateToken(sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 验证给定的 token 字符串，有效时返回 SessionClaims。
func (m *SessionManager) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateRandomString generates a random hex string of a given length.
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("fallback%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
