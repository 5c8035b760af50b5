package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameRecord 游戏投注记录表
// 结算引擎只读取本表做聚合，永远不会修改。
// 单条记录的输额定义为 max(bet_amount - win_amount, 0)，逐条截断：
// 赢的记录贡献 0，不会用负数去抵消其他记录的输额。
type GameRecord struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64           `gorm:"index;not null" json:"user_id"`
	GameType  string          `gorm:"type:varchar(32);not null" json:"game_type"` // 如 casino, slot
	BetAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"bet_amount"`
	WinAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"win_amount"`
	PlayedAt  time.Time       `gorm:"index;not null" json:"played_at"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (GameRecord) TableName() string {
	return "game_record"
}
