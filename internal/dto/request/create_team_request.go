package request

// CreateTeamRequest 邀请用户加入团队
// 使用位置:
//   - handler/request_handler.go: CreateTeamRequest
type CreateTeamRequest struct {
	// TargetEmail 被邀请用户的邮箱
	TargetEmail string `json:"target_email" binding:"required,email"`
	// TeamUid 团队唯一id
	TeamUid string `json:"team_uid" binding:"required"`
}
