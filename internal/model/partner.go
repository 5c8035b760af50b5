package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// 合作伙伴（代理）层级
// ============================================================================
//
// 层级数字越小，级别越高：
//   1 系统管理员 -> 2 总公司 -> 3 主办事处 -> 4 分办事处 -> 5 总代理 -> 6 门店
//
// 每个非根节点有且只有一个上级，整体构成一片森林（不允许成环）。
// 成环校验在创建时完成，结算引擎遍历时额外带 visited 集合兜底。

const (
	PartnerLevelSystemAdmin = 1 // 系统管理员
	PartnerLevelHeadOffice  = 2 // 总公司
	PartnerLevelMainOffice  = 3 // 主办事处
	PartnerLevelSubOffice   = 4 // 分办事处
	PartnerLevelDistributor = 5 // 总代理
	PartnerLevelStore       = 6 // 门店
)

const (
	PartnerStatusActive    = "ACTIVE"
	PartnerStatusSuspended = "SUSPENDED"
)

// Partner 合作伙伴表
// 记录联盟层级中的一个节点，以及它自己谈定的三类佣金比例
//
// 【重要】比例字段均为百分比数值（例如 1.5 表示 1.5%），
// 结算引擎计算时统一乘以 rate/100
type Partner struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Nickname       string          `gorm:"type:varchar(64);not null" json:"nickname"`
	ParentID       *int64          `gorm:"index" json:"parent_id"`                                      // 上级伙伴ID，根节点为 NULL
	Level          int             `gorm:"not null" json:"level"`                                       // 层级，数字越小级别越高
	RollingRate    decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"rolling_rate"`    // 投注额佣金比例 %
	LosingRate     decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"losing_rate"`     // 输额佣金比例 %
	WithdrawalRate decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"withdrawal_rate"` // 出金手续费佣金比例 %
	Status         string          `gorm:"type:varchar(20);index;not null;default:ACTIVE" json:"status"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"` // 伙伴自有余额
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Partner) TableName() string {
	return "partner"
}
