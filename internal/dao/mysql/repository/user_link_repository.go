package repository

import (
	"time"

	"harmony_server/internal/model"

	"gorm.io/gorm"
)

type userLinkRepository struct {
	db *gorm.DB
}

// NewUserLinkRepository 创建好友关系 Repository
func NewUserLinkRepository(db *gorm.DB) UserLinkRepository {
	return &userLinkRepository{db: db}
}

func (r *userLinkRepository) Exists(a, b uint) (bool, error) {
	ok, err := exists(r.db, &model.UserLink{}, "active_key = ?", model.PairKey(a, b))
	if err != nil {
		return false, wrapDBErrorf(err, "查询好友关系 %d-%d", a, b)
	}
	return ok, nil
}

func (r *userLinkRepository) Create(link *model.UserLink) error {
	if err := r.db.Create(link).Error; err != nil {
		return wrapDBErrorf(err, "添加好友关系 %d-%d", link.UserId1, link.UserId2)
	}
	return nil
}

// FriendIds 关系记录可能是任意方向，取另一端的用户
func (r *userLinkRepository) FriendIds(userId uint) ([]uint, error) {
	var links []model.UserLink
	if err := r.db.Where("user_id1 = ? OR user_id2 = ?", userId, userId).Order("id ASC").Find(&links).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友列表 user_id=%d", userId)
	}
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		if l.UserId1 == userId {
			ids = append(ids, l.UserId2)
		} else {
			ids = append(ids, l.UserId1)
		}
	}
	return ids, nil
}

// SoftDelete 软删除并清空有效关系键，之后可以重新发起好友申请
func (r *userLinkRepository) SoftDelete(a, b uint) (bool, error) {
	now := time.Now()
	res := r.db.Model(&model.UserLink{}).
		Where("active_key = ?", model.PairKey(a, b)).
		Updates(map[string]any{"active_key": nil, "deleted_at": now})
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "删除好友关系 %d-%d", a, b)
	}
	return res.RowsAffected > 0, nil
}
