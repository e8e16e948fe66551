// Package service 定义业务层接口，供 Handler 层调用
package service

import (
	"context"

	"harmony_server/internal/dto/respond"
	"harmony_server/internal/model"
	"harmony_server/pkg/enum/request"

	"github.com/gorilla/websocket"
)

// AuthService 握手认证
type AuthService interface {
	// Authenticate 校验凭证并实时解析身份
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
}

// RelationService 入队邀请与好友申请
type RelationService interface {
	CreateTeamRequest(ctx context.Context, senderEmail, receiverEmail, teamUid string) (string, error)
	CreateFriendRequest(ctx context.Context, senderEmail, targetEmail string) (string, error)
	// ResolveRequest 只有接收方可以处理，accepted=false 表示拒绝
	ResolveRequest(ctx context.Context, resolverEmail, uid string, accepted bool) error
	ListIncoming(ctx context.Context, email string, kind request.Kind) ([]respond.IncomingRequestRespond, error)
	ListFriends(ctx context.Context, email string) ([]respond.FriendRespond, error)
	RemoveFriend(ctx context.Context, email, friendEmail string) error
}

// ChatService 接管握手成功后的长连接，阻塞直到连接结束
type ChatService interface {
	Serve(identity *model.Identity, conn *websocket.Conn)
}
