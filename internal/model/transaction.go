package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// 充提交易常量
// ============================================================================

const (
	TransactionTypeDeposit    = "DEPOSIT"    // 充值（入金）
	TransactionTypeWithdrawal = "WITHDRAWAL" // 提现（出金）
)

const (
	TransactionStatusPending   = "PENDING"   // 等待审核
	TransactionStatusApproved  = "APPROVED"  // 审核通过，资金操作进行中
	TransactionStatusCompleted = "COMPLETED" // 资金操作完成
	TransactionStatusRejected  = "REJECTED"  // 审核拒绝
	TransactionStatusExpired   = "EXPIRED"   // 超时未审核，自动关闭
)

// ValidStatusTransitions 交易状态机
// 只有表中列出的迁移是合法的，审核接口和超时任务都必须走这张表
var ValidStatusTransitions = map[string][]string{
	TransactionStatusPending:  {TransactionStatusApproved, TransactionStatusRejected, TransactionStatusExpired},
	TransactionStatusApproved: {TransactionStatusCompleted},
}

func CanTransitionTo(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidStatusTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// Transaction 充提交易表
//
// 【重要】结算口径：出金佣金只统计 APPROVED / COMPLETED 状态的 WITHDRAWAL，
// PENDING / REJECTED / EXPIRED 一律不计入
type Transaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"` // 交易号（全局唯一）
	RequestID     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"request_id"`     // 幂等ID，客户端生成
	UserID        int64           `gorm:"index;not null" json:"user_id"`
	Type          string          `gorm:"type:varchar(20);index;not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status        string          `gorm:"type:varchar(20);index;not null" json:"status"`
	Memo          string          `gorm:"type:varchar(256)" json:"memo"`
	Operator      string          `gorm:"type:varchar(64)" json:"operator"` // 审核人
	ProcessedAt   *time.Time      `json:"processed_at"`                     // 审核完成时间
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transaction"
}
