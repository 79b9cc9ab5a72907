package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数；<=0 表示不限制
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		// Content-Length 已知时直接拒绝
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, ginErr := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(ginErr.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge, "请求体过大")
				return
			}
		}
	}
}
