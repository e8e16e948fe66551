package request

// ResolveRequest 处理（接受/拒绝）一条待处理申请
// 使用位置:
//   - handler/request_handler.go: ResolveRequest
type ResolveRequest struct {
	RequestUid string `json:"request_uid" binding:"required"`
	// Accepted 使用指针区分 false 与未传
	Accepted *bool `json:"accepted" binding:"required"`
}
