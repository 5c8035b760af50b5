package job

import (
	"context"
	"log"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/config"
	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"

	"gorm.io/gorm"
)

// TransactionExpireJob 审核超时任务
// PENDING 超过审核时限仍无人处理的充提申请自动关闭为 EXPIRED，
// 避免过期申请在审核队列里越积越多
type TransactionExpireJob struct {
	db              *gorm.DB
	transactionRepo *repository.TransactionRepository
	cfg             *config.Config
	stopCh          chan struct{}
	interval        time.Duration
	batchSize       int
}

func NewTransactionExpireJob(db *gorm.DB, cfg *config.Config) *TransactionExpireJob {
	return &TransactionExpireJob{
		db:              db,
		transactionRepo: repository.NewTransactionRepository(db),
		cfg:             cfg,
		stopCh:          make(chan struct{}),
		interval:        time.Minute,
		batchSize:       100,
	}
}

func (j *TransactionExpireJob) Start(ctx context.Context) {
	log.Println("[TransactionExpire] 审核超时任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[TransactionExpire] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[TransactionExpire] 任务停止")
			return
		case <-ticker.C:
			j.expirePendingTransactions(ctx)
		}
	}
}

func (j *TransactionExpireJob) Stop() {
	close(j.stopCh)
}

func (j *TransactionExpireJob) expirePendingTransactions(ctx context.Context) {
	timeout := time.Duration(j.cfg.Business.TransactionTimeoutMinutes) * time.Minute
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	before := time.Now().Add(-timeout)

	transactions, err := j.transactionRepo.GetExpiredPending(ctx, before, j.batchSize)
	if err != nil {
		log.Printf("[TransactionExpire] 查询超时交易失败: %v", err)
		return
	}

	if len(transactions) == 0 {
		return
	}

	expiredCount := 0
	for _, transaction := range transactions {
		err := j.transactionRepo.UpdateStatus(ctx, nil, transaction.TransactionNo,
			model.TransactionStatusPending, model.TransactionStatusExpired, "")
		if err != nil {
			log.Printf("[TransactionExpire] 关闭交易失败: transactionNo=%s, err=%v", transaction.TransactionNo, err)
			continue
		}
		expiredCount++
		log.Printf("[TransactionExpire] 交易已超时关闭: transactionNo=%s, type=%s, userID=%d",
			transaction.TransactionNo, transaction.Type, transaction.UserID)
	}

	log.Printf("[TransactionExpire] 本次关闭 %d 笔超时交易", expiredCount)
}
