package request

// Kind 关系申请类型，取值与持久化字段保持一致
type Kind string

const (
	KindTeam   Kind = "addToTeam" // 邀请加入团队
	KindFriend Kind = "addFriend" // 添加好友
)

// Valid 是否为已知的申请类型
func (k Kind) Valid() bool {
	return k == KindTeam || k == KindFriend
}

func (k Kind) String() string {
	return string(k)
}
