package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UserStatusActive  = "ACTIVE"
	UserStatusBlocked = "BLOCKED"
)

// User 玩家账户表
// 每个玩家通过推荐关系归属于唯一一个合作伙伴，且永远是层级树的叶子节点。
// 余额以外部 Invest API 为准，本表保存最近一次同步的快照。
type User struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Nickname    string          `gorm:"type:varchar(64);not null" json:"nickname"`
	PartnerID   int64           `gorm:"index;not null" json:"partner_id"`                      // 推荐人（归属伙伴）ID
	Balance     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"` // 余额快照
	Status      string          `gorm:"type:varchar(20);index;not null;default:ACTIVE" json:"status"`
	ApiSyncedAt *time.Time      `json:"api_synced_at"` // 最近一次从 Invest API 同步余额的时间
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
