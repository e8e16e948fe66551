package model

import (
	"encoding/json"
	"time"

	"harmony_server/pkg/enum/request"

	"gorm.io/gorm"
)

// Request 关系申请（入队邀请 / 好友申请）
// 处理后状态变为终态并软删除；PendingKey 仅在 pending 期间有值，
// 唯一索引保证同一 (接收方, 团队) 或同一用户对最多只有一条待处理申请
type Request struct {
	gorm.Model
	Uid        string         `gorm:"column:uid;uniqueIndex;type:char(36);not null;comment:申请唯一id"`
	Kind       request.Kind   `gorm:"column:operation;type:varchar(16);not null;comment:addToTeam / addFriend"`
	SenderId   uint           `gorm:"column:sender_id;index;not null;comment:发起方"`
	ReceiverId uint           `gorm:"column:receiver_id;index;not null;comment:接收方"`
	TeamId     uint           `gorm:"column:team_id;comment:入队邀请对应团队，好友申请为 0"`
	Data       string         `gorm:"column:data;type:varchar(512);comment:附加数据 JSON"`
	Status     request.Status `gorm:"column:status;index;type:varchar(16);not null;comment:pending / accepted / declined"`
	ResolvedAt *time.Time     `gorm:"column:time_resolved;comment:处理时间"`
	PendingKey *string        `gorm:"column:pending_key;uniqueIndex;type:varchar(96);comment:待处理唯一键"`
}

func (Request) TableName() string {
	return "requests"
}

// TeamPayload 入队邀请的附加数据
type TeamPayload struct {
	TeamName string `json:"teamName"`
	TeamUID  string `json:"teamUID"`
}

// TeamPendingKey 入队邀请的待处理唯一键
func TeamPendingKey(receiverId, teamId uint) string {
	return "team:" + TeamLinkKey(teamId, receiverId)
}

// FriendPendingKey 好友申请的待处理唯一键，与方向无关
func FriendPendingKey(a, b uint) string {
	return "friend:" + PairKey(a, b)
}

// SetTeamPayload 序列化团队信息到 Data
func (r *Request) SetTeamPayload(p TeamPayload) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.Data = string(b)
	return nil
}

// DecodeTeamPayload 解析 Data，非入队邀请或数据为空时返回零值
func (r *Request) DecodeTeamPayload() TeamPayload {
	var p TeamPayload
	if r.Kind != request.KindTeam || r.Data == "" {
		return p
	}
	_ = json.Unmarshal([]byte(r.Data), &p)
	return p
}
