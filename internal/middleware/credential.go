package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/prts/internal/service/llm"
)

// CredentialHeader 请求级调用凭证
const CredentialHeader = "X-API-Key"

// CredentialMiddleware 凭证中间件
// 请求携带 X-API-Key 或 Bearer Token 时，本次请求使用该凭证调用模型
func CredentialMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(CredentialHeader))
		if key == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}

		if key != "" {
			c.Request = c.Request.WithContext(llm.WithCredential(c.Request.Context(), key))
		}
		c.Next()
	}
}
