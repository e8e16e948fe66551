package respond

// CreateRequestRespond 创建申请成功后返回申请 uid
// 使用位置:
//   - handler/request_handler.go: CreateTeamRequest, CreateFriendRequest
type CreateRequestRespond struct {
	Uid string `json:"uid"`
}
