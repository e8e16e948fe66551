package repository

import (
	"time"

	"harmony_server/internal/model"
	"harmony_server/pkg/enum/request"

	"gorm.io/gorm"
)

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository 创建关系申请 Repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) FindPendingByUid(uid string) (*model.Request, error) {
	var req model.Request
	if err := r.db.First(&req, "uid = ? AND status = ?", uid, request.StatusPending).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询申请 uid=%s", uid)
	}
	return &req, nil
}

func (r *requestRepository) HasPending(pendingKey string) (bool, error) {
	ok, err := exists(r.db, &model.Request{}, "pending_key = ?", pendingKey)
	if err != nil {
		return false, wrapDBErrorf(err, "查询待处理申请 key=%s", pendingKey)
	}
	return ok, nil
}

func (r *requestRepository) Create(req *model.Request) error {
	if err := r.db.Create(req).Error; err != nil {
		return wrapDBErrorf(err, "创建申请 kind=%s", req.Kind)
	}
	return nil
}

// ListIncoming 关联 users 表取发起方信息，同一时间创建的按主键排序
func (r *requestRepository) ListIncoming(receiverId uint, kind request.Kind) ([]IncomingRequest, error) {
	rows := make([]IncomingRequest, 0)
	if err := r.db.Table("requests").
		Select("requests.uid, requests.operation AS kind, requests.data, requests.created_at, "+
			"requests.sender_id, users.email AS sender_email, users.username AS sender_username").
		Joins("LEFT JOIN users ON users.id = requests.sender_id").
		Where("requests.receiver_id = ? AND requests.operation = ? AND requests.status = ? AND requests.deleted_at IS NULL",
			receiverId, kind, request.StatusPending).
		Order("requests.created_at ASC, requests.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询待处理申请 receiver_id=%d", receiverId)
	}
	return rows, nil
}

// Claim 条件更新：只有仍为 pending 且未删除的记录会被修改，
// 并发处理同一申请时只有一方 RowsAffected 为 1
func (r *requestRepository) Claim(id uint, status request.Status, at time.Time) (bool, error) {
	res := r.db.Model(&model.Request{}).
		Where("id = ? AND status = ?", id, request.StatusPending).
		Updates(map[string]any{
			"status":        status,
			"time_resolved": at,
			"pending_key":   nil,
			"deleted_at":    at,
		})
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "处理申请 id=%d", id)
	}
	return res.RowsAffected > 0, nil
}
