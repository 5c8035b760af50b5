package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PartnerService struct {
	partnerRepo *repository.PartnerRepository
	db          *gorm.DB
}

func NewPartnerService(db *gorm.DB) *PartnerService {
	return &PartnerService{
		partnerRepo: repository.NewPartnerRepository(db),
		db:          db,
	}
}

type CreatePartnerRequest struct {
	Username       string
	Nickname       string
	ParentID       *int64
	Level          int
	RollingRate    decimal.Decimal
	LosingRate     decimal.Decimal
	WithdrawalRate decimal.Decimal
}

// CreatePartner 创建伙伴节点
//
// 建档时维护层级不变量：
//   1. 上级必须存在（根节点除外）
//   2. 下级层级必须比上级深，天然排除成环
//   3. 下级比例不得高于上级同类比例，否则差额结算会出现负净利
func (s *PartnerService) CreatePartner(ctx context.Context, req *CreatePartnerRequest) (*model.Partner, error) {
	existing, err := s.partnerRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("查询伙伴失败: %w", err)
	}
	if existing != nil {
		return nil, errors.New("用户名已存在")
	}

	if req.ParentID != nil {
		parent, err := s.partnerRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrPartnerNotFound) {
				return nil, repository.ErrParentNotFound
			}
			return nil, fmt.Errorf("查询上级伙伴失败: %w", err)
		}

		if req.Level <= parent.Level {
			return nil, fmt.Errorf("%w: 下级层级(%d)必须比上级(%d)深", repository.ErrHierarchyInvalid, req.Level, parent.Level)
		}

		if req.RollingRate.GreaterThan(parent.RollingRate) ||
			req.LosingRate.GreaterThan(parent.LosingRate) ||
			req.WithdrawalRate.GreaterThan(parent.WithdrawalRate) {
			return nil, fmt.Errorf("%w: 下级佣金比例不得高于上级", repository.ErrHierarchyInvalid)
		}
	} else if req.Level != model.PartnerLevelSystemAdmin && req.Level != model.PartnerLevelHeadOffice {
		// 根节点只允许系统管理员或总公司
		return nil, fmt.Errorf("%w: 层级 %d 不允许作为根节点", repository.ErrHierarchyInvalid, req.Level)
	}

	partner := &model.Partner{
		Username:       req.Username,
		Nickname:       req.Nickname,
		ParentID:       req.ParentID,
		Level:          req.Level,
		RollingRate:    req.RollingRate,
		LosingRate:     req.LosingRate,
		WithdrawalRate: req.WithdrawalRate,
		Status:         model.PartnerStatusActive,
		Balance:        decimal.Zero,
	}

	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, fmt.Errorf("创建伙伴失败: %w", err)
	}

	return partner, nil
}

func (s *PartnerService) GetPartner(ctx context.Context, id int64) (*model.Partner, error) {
	return s.partnerRepo.GetByID(ctx, id)
}

func (s *PartnerService) ListChildren(ctx context.Context, parentID int64) ([]*model.Partner, error) {
	// 先确认父节点存在，区分"没有下级"和"伙伴不存在"
	if _, err := s.partnerRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.partnerRepo.GetChildren(ctx, parentID)
}

func (s *PartnerService) ListAll(ctx context.Context) ([]*model.Partner, error) {
	return s.partnerRepo.ListAll(ctx)
}

// UpdateRates 调整佣金比例，校验规则与创建时一致
func (s *PartnerService) UpdateRates(ctx context.Context, id int64, rolling, losing, withdrawal decimal.Decimal) error {
	partner, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if rolling.IsNegative() || losing.IsNegative() || withdrawal.IsNegative() {
		return errors.New("佣金比例不能为负数")
	}

	if partner.ParentID != nil {
		parent, err := s.partnerRepo.GetByID(ctx, *partner.ParentID)
		if err != nil {
			return fmt.Errorf("查询上级伙伴失败: %w", err)
		}
		if rolling.GreaterThan(parent.RollingRate) ||
			losing.GreaterThan(parent.LosingRate) ||
			withdrawal.GreaterThan(parent.WithdrawalRate) {
			return fmt.Errorf("%w: 下级佣金比例不得高于上级", repository.ErrHierarchyInvalid)
		}
	}

	return s.partnerRepo.UpdateRates(ctx, id, rolling, losing, withdrawal)
}

func (s *PartnerService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if status != model.PartnerStatusActive && status != model.PartnerStatusSuspended {
		return errors.New("伙伴状态不合法")
	}
	return s.partnerRepo.UpdateStatus(ctx, id, status)
}
