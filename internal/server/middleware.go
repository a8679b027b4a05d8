package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/mowind/multiaddress-go/internal/errors"
)

const (
	// RequestIDHeader 请求ID头
	RequestIDHeader = "X-Request-ID"
	// requestIDKey gin context 中保存请求ID的键
	requestIDKey = "request_id"
)

// RequestIDMiddleware 为每个请求分配请求ID。
//
// 调用方提供的 X-Request-ID 经过校验后沿用，否则生成 UUID；
// 请求ID 写回响应头，并放入请求 context 供日志使用。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := apperrors.SanitizeRequestID(c.GetHeader(RequestIDHeader))

		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(apperrors.NewContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// AuthMiddleware authenticates requests using a shared secret sent as a
// Bearer token or an X-API-Key header. Whitelisted paths match exactly.
func AuthMiddleware(enabled bool, secret string, whitelist []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(whitelist))
	for _, p := range whitelist {
		allowed[p] = true
	}

	return func(c *gin.Context) {
		if !enabled || allowed[c.Request.URL.Path] {
			c.Next()
			return
		}

		if authenticated(c, secret) {
			c.Next()
			return
		}

		// 不区分失败原因，避免泄露信息
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
			"code":  http.StatusUnauthorized,
		})
	}
}

// authenticated 优先检查 Authorization 头；提供了 Authorization 时不再回退到 X-API-Key
func authenticated(c *gin.Context, secret string) bool {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		return len(parts) == 2 && parts[0] == "Bearer" && secretEqual(parts[1], secret)
	}
	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
		return secretEqual(apiKey, secret)
	}
	return false
}

func secretEqual(got, want string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
