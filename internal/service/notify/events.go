package notify

// 推送给客户端的事件名
const (
	EventNewTeamRequest      = "update:new_team_request"
	EventNewFriendRequest    = "update:new_friend_request"
	EventAcceptFriendRequest = "update:accept_friend_request"
	EventRejectFriendRequest = "update:reject_friend_request"

	EventNewMessage     = "update:new_message"
	EventEditedMessage  = "update:edited_message"
	EventDeletedMessage = "update:deleted_message"

	EventSessionReady = "session:ready"
	EventSessionError = "session:error"
)

// TeamPayload 团队相关事件的负载，Team 为团队名称或 uid
type TeamPayload struct {
	Team string `json:"team"`
}

// UserPayload 好友相关事件的负载，Username 为触发方的名称
type UserPayload struct {
	Username string `json:"username"`
}

// SessionReadyPayload 连接建立后下发的会话信息
type SessionReadyPayload struct {
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// ErrorPayload 客户端信令处理失败时的提示
type ErrorPayload struct {
	Msg string `json:"msg"`
}

// IsTeamMessageEvent 是否为团队聊天消息事件
func IsTeamMessageEvent(event string) bool {
	switch event {
	case EventNewMessage, EventEditedMessage, EventDeletedMessage:
		return true
	}
	return false
}
