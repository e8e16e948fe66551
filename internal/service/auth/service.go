// Package auth 提供连接握手认证
// 校验凭证后从存储解析身份，身份信息不信任凭证中的声明
package auth

import (
	"context"
	"strings"

	"harmony_server/internal/infrastructure/metrics"
	"harmony_server/internal/model"
	"harmony_server/pkg/errorx"
	"harmony_server/pkg/util/jwt"

	"go.uber.org/zap"
)

// Service 握手认证服务
type Service struct {
	resolver IdentityResolver
	metrics  *metrics.Metrics
}

// NewAuthService 创建认证服务实例，metrics 可为 nil
func NewAuthService(resolver IdentityResolver, m *metrics.Metrics) *Service {
	return &Service{
		resolver: resolver,
		metrics:  m,
	}
}

// Authenticate 校验凭证并解析身份
// 失败时返回的错误码：
//   - 未携带凭证 -> CodeAuthMissing
//   - 签名、过期或用途校验失败 -> CodeAuthInvalid
//   - 用户不存在或已删除 -> CodeUnknownIdentity
//   - 存储故障 -> CodeDBError
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.metrics.Handshake("missing")
		return nil, errorx.ErrAuthMissing
	}

	claims, err := jwt.ParseToken(token)
	if err != nil {
		s.metrics.Handshake("invalid")
		return nil, errorx.Wrap(err, errorx.CodeAuthInvalid, errorx.ErrAuthInvalid.Msg)
	}
	if claims.Subject != "access_token" {
		s.metrics.Handshake("invalid")
		return nil, errorx.ErrAuthInvalid
	}

	identity, err := s.resolver.Resolve(ctx, claims.Email)
	if err != nil {
		if errorx.HasCode(err, errorx.CodeUnknownIdentity) {
			s.metrics.Handshake("unknown")
		} else {
			s.metrics.Handshake("error")
			zap.L().Error("resolve identity failed", zap.String("email", claims.Email), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.Handshake("ok")
	return identity, nil
}
