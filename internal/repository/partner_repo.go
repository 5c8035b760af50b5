package repository

import (
	"context"
	"errors"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPartnerNotFound  = errors.New("伙伴不存在")
	ErrParentNotFound   = errors.New("上级伙伴不存在")
	ErrHierarchyInvalid = errors.New("层级关系不合法")
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, partner *model.Partner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (*model.Partner, error) {
	var partner model.Partner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepository) GetByUsername(ctx context.Context, username string) (*model.Partner, error) {
	var partner model.Partner
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&partner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetChildren 查询直属下级，固定按 level 升序、nickname 升序
// 排序是结算批量报表的展示契约，改动前先确认前端依赖
func (r *PartnerRepository) GetChildren(ctx context.Context, parentID int64) ([]*model.Partner, error) {
	var partners []*model.Partner
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("level ASC, nickname ASC").
		Find(&partners).Error
	return partners, err
}

func (r *PartnerRepository) ListAll(ctx context.Context) ([]*model.Partner, error) {
	var partners []*model.Partner
	err := r.db.WithContext(ctx).
		Order("level ASC, nickname ASC").
		Find(&partners).Error
	return partners, err
}

func (r *PartnerRepository) UpdateRates(ctx context.Context, id int64, rolling, losing, withdrawal decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&model.Partner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rolling_rate":    rolling,
			"losing_rate":     losing,
			"withdrawal_rate": withdrawal,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

func (r *PartnerRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Partner{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPartnerNotFound
	}
	return nil
}
