package service

import (
	"context"
	"testing"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"
	"github.com/lunatickworker/casino-sub002/internal/settlement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSettlementFixture(t *testing.T, db *gorm.DB) (head, main *model.Partner) {
	t.Helper()
	psvc := NewPartnerService(db)
	ctx := context.Background()

	head, err := psvc.CreatePartner(ctx, &CreatePartnerRequest{
		Username:       "head",
		Nickname:       "总公司",
		Level:          model.PartnerLevelHeadOffice,
		RollingRate:    mustDec(t, "1"),
		LosingRate:     mustDec(t, "5"),
		WithdrawalRate: mustDec(t, "0"),
	})
	require.NoError(t, err)

	main, err = psvc.CreatePartner(ctx, &CreatePartnerRequest{
		Username:       "main",
		Nickname:       "主办事处",
		ParentID:       &head.ID,
		Level:          model.PartnerLevelMainOffice,
		RollingRate:    mustDec(t, "0.5"),
		LosingRate:     mustDec(t, "2"),
		WithdrawalRate: mustDec(t, "0"),
	})
	require.NoError(t, err)

	user := seedTestUser(t, db, "player1", main.ID, "0")
	record := &model.GameRecord{
		UserID:    user.ID,
		GameType:  "casino",
		BetAmount: mustDec(t, "10000"),
		WinAmount: mustDec(t, "3000"),
		PlayedAt:  time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(record).Error)
	return head, main
}

func TestSettlementServiceReports(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	head, main := seedSettlementFixture(t, db)
	svc := NewSettlementService(db)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("PartnerCommission", func(t *testing.T) {
		result, err := svc.PartnerCommission(ctx, head.ID, start, end)
		require.NoError(t, err)
		assert.Equal(t, settlement.CalcStatusOK, result.Status)
		assert.Equal(t, "总公司", result.Nickname)
		assert.Equal(t, model.PartnerLevelHeadOffice, result.Level)
		// 10000*1% + 7000*5% = 450
		assert.True(t, result.TotalCommission.Equal(mustDec(t, "450")), "total=%s", result.TotalCommission)
	})

	t.Run("ChildCommissions", func(t *testing.T) {
		results, err := svc.ChildCommissions(ctx, head.ID, start, end)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, main.ID, results[0].PartnerID)
		// 10000*0.5% + 7000*2% = 190
		assert.True(t, results[0].TotalCommission.Equal(mustDec(t, "190")))
	})

	t.Run("IntegratedSettlement", func(t *testing.T) {
		summary, err := svc.IntegratedSettlement(ctx, head.ID, start, end)
		require.NoError(t, err)
		assert.Equal(t, settlement.CalcStatusOK, summary.Status)
		assert.True(t, summary.NetTotalProfit.Equal(mustDec(t, "260")))
	})

	t.Run("UnknownPartnerSurfacesError", func(t *testing.T) {
		_, err := svc.PartnerCommission(ctx, 999, start, end)
		assert.ErrorIs(t, err, repository.ErrPartnerNotFound)

		_, err = svc.MonthlyCommission(ctx, 999)
		assert.ErrorIs(t, err, repository.ErrPartnerNotFound)
	})
}
