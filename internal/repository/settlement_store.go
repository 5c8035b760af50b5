package repository

import (
	"context"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/settlement"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementStore 结算引擎数据访问接口的 gorm 实现
// 把引擎需要的四个读操作桥接到各 repository 上
type SettlementStore struct {
	partnerRepo     *PartnerRepository
	userRepo        *UserRepository
	gameRecordRepo  *GameRecordRepository
	transactionRepo *TransactionRepository
}

func NewSettlementStore(db *gorm.DB) *SettlementStore {
	return &SettlementStore{
		partnerRepo:     NewPartnerRepository(db),
		userRepo:        NewUserRepository(db),
		gameRecordRepo:  NewGameRecordRepository(db),
		transactionRepo: NewTransactionRepository(db),
	}
}

func (s *SettlementStore) GetChildPartners(ctx context.Context, parentID int64) ([]settlement.PartnerInfo, error) {
	partners, err := s.partnerRepo.GetChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}

	infos := make([]settlement.PartnerInfo, 0, len(partners))
	for _, p := range partners {
		infos = append(infos, settlement.PartnerInfo{
			ID:       p.ID,
			Nickname: p.Nickname,
			Level:    p.Level,
			Rates: settlement.Rates{
				Rolling:    p.RollingRate,
				Losing:     p.LosingRate,
				Withdrawal: p.WithdrawalRate,
			},
		})
	}
	return infos, nil
}

func (s *SettlementStore) GetPartnerUserIDs(ctx context.Context, partnerID int64) ([]int64, error) {
	return s.userRepo.GetUserIDsByPartner(ctx, partnerID)
}

func (s *SettlementStore) GetBettingStats(ctx context.Context, userIDs []int64, start, end time.Time) (settlement.BettingStats, error) {
	totalBet, totalLoss, err := s.gameRecordRepo.AggregateBettingStats(ctx, userIDs, start, end)
	if err != nil {
		return settlement.BettingStats{TotalBet: decimal.Zero, TotalLoss: decimal.Zero}, err
	}
	return settlement.BettingStats{TotalBet: totalBet, TotalLoss: totalLoss}, nil
}

func (s *SettlementStore) GetWithdrawalAmount(ctx context.Context, userIDs []int64, start, end time.Time) (decimal.Decimal, error) {
	return s.transactionRepo.SumWithdrawalAmount(ctx, userIDs, start, end)
}
