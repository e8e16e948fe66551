package model

// Identity 握手成功后绑定到连接上的身份，在握手时从存储实时解析
type Identity struct {
	ID       uint     `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"` // 拥有及加入的团队 uid
}

// InGroup 是否属于指定团队
func (i *Identity) InGroup(teamUid string) bool {
	for _, g := range i.Groups {
		if g == teamUid {
			return true
		}
	}
	return false
}
