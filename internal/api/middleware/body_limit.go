package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/response"
)

// DefaultBodyLimit 未配置时的请求体上限（1000 条考勤标记约 60KB）
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数；Content-Length 已超限时直接拒绝
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultBodyLimit
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
