package repository

import (
	"context"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GameRecordRepository struct {
	db *gorm.DB
}

func NewGameRecordRepository(db *gorm.DB) *GameRecordRepository {
	return &GameRecordRepository{db: db}
}

func (r *GameRecordRepository) Create(ctx context.Context, record *model.GameRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

type bettingAggRow struct {
	TotalBet  decimal.Decimal
	TotalLoss decimal.Decimal
}

// AggregateBettingStats 聚合窗口内的投注额与输额
//
// 【重要】输额在 SQL 里逐条截断：
//   SUM(CASE WHEN bet > win THEN bet - win ELSE 0 END)
// 而不是 SUM(bet) - SUM(win)。赢钱的记录贡献 0，
// 绝不能让某条记录的负差额去抵消其他记录的输额。
func (r *GameRecordRepository) AggregateBettingStats(ctx context.Context, userIDs []int64, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var row bettingAggRow
	err := r.db.WithContext(ctx).
		Model(&model.GameRecord{}).
		Select(
			"COALESCE(SUM(bet_amount), 0) AS total_bet, " +
				"COALESCE(SUM(CASE WHEN bet_amount > win_amount THEN bet_amount - win_amount ELSE 0 END), 0) AS total_loss",
		).
		Where("user_id IN ?", userIDs).
		Where("played_at >= ? AND played_at < ?", start, end).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return row.TotalBet, row.TotalLoss, nil
}

func (r *GameRecordRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.GameRecord, int64, error) {
	var records []*model.GameRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&model.GameRecord{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("played_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error

	return records, total, err
}
