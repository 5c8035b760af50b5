package job

import (
	"context"
	"log"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/config"
	"github.com/lunatickworker/casino-sub002/internal/service"

	"gorm.io/gorm"
)

// BalanceSyncJob 余额同步任务
// 周期性把活跃玩家的 Invest API 实时余额刷新到本地快照，
// 运营界面按快照展示，无需每次页面加载都打外部接口
type BalanceSyncJob struct {
	balanceService *service.BalanceService
	cfg            *config.Config
	stopCh         chan struct{}
	interval       time.Duration
	batchSize      int
}

func NewBalanceSyncJob(db *gorm.DB, cfg *config.Config, invest service.InvestClient) *BalanceSyncJob {
	interval := time.Duration(cfg.Business.BalanceSyncSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	batchSize := cfg.Business.BalanceSyncBatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	return &BalanceSyncJob{
		balanceService: service.NewBalanceService(db, invest),
		cfg:            cfg,
		stopCh:         make(chan struct{}),
		interval:       interval,
		batchSize:      batchSize,
	}
}

func (j *BalanceSyncJob) Start(ctx context.Context) {
	log.Println("[BalanceSync] 余额同步任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[BalanceSync] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[BalanceSync] 任务停止")
			return
		case <-ticker.C:
			synced := j.balanceService.SyncBatch(ctx, j.batchSize)
			if synced > 0 {
				log.Printf("[BalanceSync] 本轮同步 %d 个玩家余额", synced)
			}
		}
	}
}

func (j *BalanceSyncJob) Stop() {
	close(j.stopCh)
}
