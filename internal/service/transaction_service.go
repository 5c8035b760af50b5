package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/config"
	"github.com/lunatickworker/casino-sub002/internal/infrastructure/lock"
	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"
	"github.com/lunatickworker/casino-sub002/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrBalanceNotEnough = errors.New("玩家余额不足")

// InvestClient 外部钱包接口
// 用接口注入而不是具体 client，测试时用假实现替换
type InvestClient interface {
	GetBalance(ctx context.Context, username string) (decimal.Decimal, error)
	Deposit(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error)
}

type TransactionService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	cfg             *config.Config
	invest          InvestClient
	transactionRepo *repository.TransactionRepository
	userRepo        *repository.UserRepository
	outboxRepo      *repository.OutboxRepository
}

func NewTransactionService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, invest InvestClient) *TransactionService {
	return &TransactionService{
		db:              db,
		redisClient:     redisClient,
		cfg:             cfg,
		invest:          invest,
		transactionRepo: repository.NewTransactionRepository(db),
		userRepo:        repository.NewUserRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

type TransactionRequest struct {
	RequestID string          `json:"request_id" binding:"required"`
	UserID    int64           `json:"user_id" binding:"required"`
	Type      string          `json:"type" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Memo      string          `json:"memo"`
}

// Request 玩家发起充值/提现申请，进入 PENDING 等待审核
// 相同 request_id 幂等返回已有交易
func (s *TransactionService) Request(ctx context.Context, req *TransactionRequest) (*model.Transaction, error) {
	if req.Type != model.TransactionTypeDeposit && req.Type != model.TransactionTypeWithdrawal {
		return nil, errors.New("交易类型不合法")
	}
	if !req.Amount.IsPositive() {
		return nil, errors.New("金额必须大于0")
	}

	existing, err := s.transactionRepo.GetByRequestID(ctx, req.RequestID)
	if err != nil {
		return nil, fmt.Errorf("查询交易失败: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	transaction := &model.Transaction{
		TransactionNo: idgen.GenerateTransactionNo(),
		RequestID:     req.RequestID,
		UserID:        req.UserID,
		Type:          req.Type,
		Amount:        req.Amount,
		Status:        model.TransactionStatusPending,
		Memo:          req.Memo,
	}

	if err := s.transactionRepo.Create(ctx, nil, transaction); err != nil {
		return nil, fmt.Errorf("创建交易失败: %w", err)
	}

	return transaction, nil
}

// Approve 审核通过
//
// 【关键点】审核是资金操作，必须保证：
// 1. 并发安全：同一玩家的审核通过分布式锁串行化
// 2. 状态机：只有 PENDING 能被批准，CAS 条件更新兜底
// 3. 原子性：状态迁移、Invest API 资金操作、余额快照、
//    发件箱事件在同一个数据库事务里，API 失败整体回滚
func (s *TransactionService) Approve(ctx context.Context, transactionNo, operator string) (*model.Transaction, error) {
	transaction, err := s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
	if err != nil {
		return nil, err
	}

	// 分布式锁按玩家维度，防止同一玩家的充值/提现审核交叉执行
	if s.redisClient != nil {
		approveLock := lock.NewApproveLock(s.redisClient, transaction.UserID, transactionNo)
		if err := approveLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
		}
		defer approveLock.Unlock(ctx)
	}

	// 拿到锁后重新读取，状态可能已被并发审核修改
	transaction, err = s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
	if err != nil {
		return nil, err
	}
	if transaction.Status != model.TransactionStatusPending {
		return nil, repository.ErrStatusInvalid
	}

	user, err := s.userRepo.GetByID(ctx, transaction.UserID)
	if err != nil {
		return nil, err
	}

	if transaction.Type == model.TransactionTypeWithdrawal && user.Balance.LessThan(transaction.Amount) {
		return nil, ErrBalanceNotEnough
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transactionRepo.UpdateStatus(ctx, tx, transactionNo,
			model.TransactionStatusPending, model.TransactionStatusApproved, operator); err != nil {
			return fmt.Errorf("更新交易状态失败: %w", err)
		}

		// 资金操作走 Invest API，失败则整个事务回滚，交易留在 PENDING
		var newBalance decimal.Decimal
		var investErr error
		if transaction.Type == model.TransactionTypeDeposit {
			newBalance, investErr = s.invest.Deposit(ctx, user.Username, transaction.Amount)
		} else {
			newBalance, investErr = s.invest.Withdraw(ctx, user.Username, transaction.Amount)
		}
		if investErr != nil {
			return fmt.Errorf("Invest API 资金操作失败: %w", investErr)
		}

		if err := s.userRepo.UpdateBalance(ctx, tx, user.ID, newBalance, time.Now()); err != nil {
			return fmt.Errorf("更新余额快照失败: %w", err)
		}

		if err := s.transactionRepo.UpdateStatus(ctx, tx, transactionNo,
			model.TransactionStatusApproved, model.TransactionStatusCompleted, operator); err != nil {
			return fmt.Errorf("更新交易状态失败: %w", err)
		}

		return s.createResultEvent(ctx, tx, transaction, model.TransactionStatusCompleted, operator)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("审核通过: transactionNo=%s, type=%s, userID=%d, amount=%s, operator=%s",
		transactionNo, transaction.Type, transaction.UserID, transaction.Amount.String(), operator)

	return s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
}

// Reject 审核拒绝，不发生资金操作
func (s *TransactionService) Reject(ctx context.Context, transactionNo, operator, reason string) (*model.Transaction, error) {
	transaction, err := s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transactionRepo.UpdateStatus(ctx, tx, transactionNo,
			model.TransactionStatusPending, model.TransactionStatusRejected, operator); err != nil {
			return err
		}

		if reason != "" {
			if err := tx.WithContext(ctx).
				Model(&model.Transaction{}).
				Where("transaction_no = ?", transactionNo).
				Update("memo", reason).Error; err != nil {
				return err
			}
		}

		return s.createResultEvent(ctx, tx, transaction, model.TransactionStatusRejected, operator)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("审核拒绝: transactionNo=%s, operator=%s, reason=%s", transactionNo, operator, reason)

	return s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
}

func (s *TransactionService) GetTransaction(ctx context.Context, transactionNo string) (*model.Transaction, error) {
	return s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
}

func (s *TransactionService) ListPending(ctx context.Context, limit int) ([]*model.Transaction, error) {
	return s.transactionRepo.ListPending(ctx, limit)
}

func (s *TransactionService) ListUserTransactions(ctx context.Context, userID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	return s.transactionRepo.ListByUser(ctx, userID, page, pageSize)
}

// createResultEvent 在业务事务内写入审核结果事件，由 OutboxSender 异步投递
func (s *TransactionService) createResultEvent(ctx context.Context, tx *gorm.DB, transaction *model.Transaction, status, operator string) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"transaction_no": transaction.TransactionNo,
		"user_id":        transaction.UserID,
		"type":           transaction.Type,
		"amount":         transaction.Amount,
		"status":         status,
		"operator":       operator,
		"processed_at":   time.Now().Format(time.RFC3339),
	})

	outboxMsg := &model.OutboxMessage{
		EventType:  model.EventTypeTransactionResult,
		MessageKey: transaction.TransactionNo,
		Topic:      s.cfg.Kafka.Topic.TransactionResult,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, outboxMsg); err != nil {
		return fmt.Errorf("写入事件失败: %w", err)
	}
	return nil
}
