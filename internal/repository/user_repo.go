package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("玩家不存在")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserIDsByPartner 查询直接挂在某伙伴名下的玩家ID（不含下级伙伴的玩家）
func (r *UserRepository) GetUserIDsByPartner(ctx context.Context, partnerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("partner_id = ?", partnerID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) ListByPartner(ctx context.Context, partnerID int64, page, pageSize int) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{}).Where("partner_id = ?", partnerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error

	return users, total, err
}

// ListActiveForSync 按同步时间从旧到新取一批待同步的活跃玩家
// 从未同步过的（api_synced_at IS NULL）排最前
func (r *UserRepository) ListActiveForSync(ctx context.Context, limit int) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Where("status = ?", model.UserStatusActive).
		Order("api_synced_at ASC NULLS FIRST").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// UpdateBalance 更新余额快照和同步时间
func (r *UserRepository) UpdateBalance(ctx context.Context, tx *gorm.DB, userID int64, balance decimal.Decimal, syncedAt time.Time) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"balance":       balance,
			"api_synced_at": syncedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
