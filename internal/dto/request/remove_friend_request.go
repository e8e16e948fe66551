package request

// RemoveFriendRequest 解除好友关系
// 使用位置:
//   - handler/friend_handler.go: RemoveFriend
type RemoveFriendRequest struct {
	FriendEmail string `json:"friend_email" binding:"required,email"`
}
