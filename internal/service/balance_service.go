package service

import (
	"context"
	"log"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceService 玩家余额同步
// 真实余额在外部 Invest 平台，本服务维护 users.balance 快照：
// 后台任务周期性批量刷新，运营界面也可以按玩家手动触发
type BalanceService struct {
	userRepo       *repository.UserRepository
	gameRecordRepo *repository.GameRecordRepository
	invest         InvestClient
	db             *gorm.DB
}

func NewBalanceService(db *gorm.DB, invest InvestClient) *BalanceService {
	return &BalanceService{
		userRepo:       repository.NewUserRepository(db),
		gameRecordRepo: repository.NewGameRecordRepository(db),
		invest:         invest,
		db:             db,
	}
}

func (s *BalanceService) GetBalance(ctx context.Context, userID int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// SyncUser 从 Invest API 拉取单个玩家的实时余额并更新快照
func (s *BalanceService) SyncUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := s.invest.GetBalance(ctx, user.Username)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.userRepo.UpdateBalance(ctx, nil, userID, balance, time.Now()); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// SyncBatch 同步一批活跃玩家，按同步时间从旧到新轮转
// 返回成功同步的数量；单个玩家失败只记日志，不中断整批
func (s *BalanceService) SyncBatch(ctx context.Context, limit int) int {
	users, err := s.userRepo.ListActiveForSync(ctx, limit)
	if err != nil {
		log.Printf("[BalanceSync] 查询待同步玩家失败: %v", err)
		return 0
	}

	synced := 0
	for _, user := range users {
		balance, err := s.invest.GetBalance(ctx, user.Username)
		if err != nil {
			log.Printf("[BalanceSync] 拉取余额失败: userID=%d, err=%v", user.ID, err)
			continue
		}
		if err := s.userRepo.UpdateBalance(ctx, nil, user.ID, balance, time.Now()); err != nil {
			log.Printf("[BalanceSync] 更新余额快照失败: userID=%d, err=%v", user.ID, err)
			continue
		}
		synced++
	}
	return synced
}

func (s *BalanceService) ListPartnerUsers(ctx context.Context, partnerID int64, page, pageSize int) ([]*model.User, int64, error) {
	return s.userRepo.ListByPartner(ctx, partnerID, page, pageSize)
}

// ListUserGameRecords 玩家投注历史，按时间倒序分页
func (s *BalanceService) ListUserGameRecords(ctx context.Context, userID int64, page, pageSize int) ([]*model.GameRecord, int64, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.gameRecordRepo.ListByUser(ctx, userID, page, pageSize)
}
