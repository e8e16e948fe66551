package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 把 http 请求重定向到 https://host:port
// 开发模式下 secure 会跳过重定向
func TlsHandler(host string, port int, dev bool) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:   true,
		SSLHost:       host + ":" + strconv.Itoa(port),
		IsDevelopment: dev,
	})

	return func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		// 重定向时 secure 已写出响应，同样返回 error
		if status := c.Writer.Status(); status >= 300 && status < 400 {
			c.Abort()
			return
		}
		if err != nil {
			// 不能 Fatal，记录后终止当前请求即可
			zap.L().Error("TLS redirection failed", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
