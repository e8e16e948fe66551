package respond

// FriendRespond 好友列表项
// 使用位置:
//   - internal/service/relation/service.go: ListFriends
type FriendRespond struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}
