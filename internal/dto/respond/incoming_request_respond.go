package respond

// IncomingRequestRespond 待处理申请列表项
// 使用位置:
//   - internal/service/relation/service.go: ListIncoming
type IncomingRequestRespond struct {
	Uid            string `json:"uid"`
	Kind           string `json:"kind"`
	SenderEmail    string `json:"sender_email"`
	SenderUsername string `json:"sender_username"`
	TeamName       string `json:"team_name,omitempty"`
	TeamUid        string `json:"team_uid,omitempty"`
	CreatedAt      string `json:"created_at"`
}
