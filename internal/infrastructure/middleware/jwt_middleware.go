package middleware

import (
	"context"
	"net/http"
	"strings"

	"harmony_server/internal/model"
	"harmony_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextIdentityKey 认证通过后身份在 gin.Context 中的 key
const ContextIdentityKey = "identity"

// Authenticator 握手认证，由 auth.Service 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
}

// JWTAuth 认证中间件
// 凭证优先取 Authorization: Bearer，其次取 query 参数 token（浏览器建立 WebSocket 时无法自定义 Header）
// 认证失败直接返回 401，不会进入后续 Handler，也不会升级为 WebSocket
func JWTAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    errorx.CodeAuthInvalid,
				"msg":     "Token 格式错误，请使用 Bearer Token",
			})
			return
		}

		identity, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errorx.IsAuthFailure(err) {
				zap.L().Error("authenticate failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"code":    errorx.ErrServerBusy.Code,
					"msg":     errorx.ErrServerBusy.Msg,
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    errorx.GetCode(err),
				"msg":     authMessage(err),
			})
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// CurrentIdentity 取出 JWTAuth 写入的身份
func CurrentIdentity(c *gin.Context) (*model.Identity, bool) {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*model.Identity)
	return identity, ok && identity != nil
}

// extractToken 第二个返回值为 false 表示 Authorization 头存在但格式不对
func extractToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	return c.Query("token"), true
}

func authMessage(err error) string {
	switch errorx.GetCode(err) {
	case errorx.CodeAuthMissing:
		return errorx.ErrAuthMissing.Msg
	case errorx.CodeUnknownIdentity:
		return errorx.ErrUnknownIdentity.Msg
	}
	return errorx.ErrAuthInvalid.Msg
}
