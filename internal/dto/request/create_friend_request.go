package request

// CreateFriendRequest 申请添加好友
// 使用位置:
//   - handler/request_handler.go: CreateFriendRequest
type CreateFriendRequest struct {
	// TargetEmail 被申请用户的邮箱
	TargetEmail string `json:"target_email" binding:"required,email"`
}
