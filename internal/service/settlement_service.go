package service

import (
	"context"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"
	"github.com/lunatickworker/casino-sub002/internal/settlement"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService 结算报表入口
// 负责加载伙伴档案（拿到它自己谈定的比例）再委托给结算引擎，
// 引擎本身不感知伙伴表结构
type SettlementService struct {
	partnerRepo *repository.PartnerRepository
	engine      *settlement.Engine
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{
		partnerRepo: repository.NewPartnerRepository(db),
		engine:      settlement.NewEngine(repository.NewSettlementStore(db)),
	}
}

func (s *SettlementService) partnerRates(p *model.Partner) settlement.Rates {
	return settlement.Rates{
		Rolling:    p.RollingRate,
		Losing:     p.LosingRate,
		Withdrawal: p.WithdrawalRate,
	}
}

// PartnerCommission 单伙伴佣金报表
func (s *SettlementService) PartnerCommission(ctx context.Context, partnerID int64, start, end time.Time) (*settlement.CommissionResult, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	result := s.engine.CalculatePartnerCommission(ctx, partnerID, s.partnerRates(partner), start, end)
	result.Nickname = partner.Nickname
	result.Level = partner.Level
	return result, nil
}

// ChildCommissions 直属下级佣金批量报表
func (s *SettlementService) ChildCommissions(ctx context.Context, parentID int64, start, end time.Time) ([]*settlement.CommissionResult, error) {
	if _, err := s.partnerRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.engine.CalculateChildPartnersCommission(ctx, parentID, start, end)
}

// IntegratedSettlement 整合结算报表
func (s *SettlementService) IntegratedSettlement(ctx context.Context, partnerID int64, start, end time.Time) (*settlement.SettlementSummary, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return s.engine.CalculateIntegratedSettlement(ctx, partnerID, s.partnerRates(partner), start, end), nil
}

// MonthlyCommission 当月佣金
func (s *SettlementService) MonthlyCommission(ctx context.Context, partnerID int64) (decimal.Decimal, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.engine.CalculateMonthlyCommission(ctx, partnerID, s.partnerRates(partner)), nil
}
