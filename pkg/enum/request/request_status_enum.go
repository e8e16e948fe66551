package request

// Status 申请状态
// pending 只能迁移到 accepted 或 declined，之后不再变化
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Resolved 是否为终态
func (s Status) Resolved() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// StatusFor 根据处理结果返回终态
func StatusFor(accepted bool) Status {
	if accepted {
		return StatusAccepted
	}
	return StatusDeclined
}
