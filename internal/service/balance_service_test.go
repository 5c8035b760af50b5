package service

import (
	"context"
	"testing"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceSyncUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := seedTestUser(t, db, "player1", 1, "0")

	invest := newFakeInvestClient()
	invest.balances["player1"] = mustDec(t, "8888.50")

	svc := NewBalanceService(db, invest)
	balance, err := svc.SyncUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(mustDec(t, "8888.50")))

	var refreshed model.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.True(t, refreshed.Balance.Equal(mustDec(t, "8888.50")))
	assert.NotNil(t, refreshed.ApiSyncedAt)
}

func TestBalanceSyncBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("SyncsActiveUsers", func(t *testing.T) {
		db := setupTestDB(t)
		seedTestUser(t, db, "player1", 1, "0")
		seedTestUser(t, db, "player2", 1, "0")

		blocked := seedTestUser(t, db, "blocked", 1, "0")
		require.NoError(t, db.Model(blocked).Update("status", model.UserStatusBlocked).Error)

		invest := newFakeInvestClient()
		invest.balances["player1"] = mustDec(t, "100")
		invest.balances["player2"] = mustDec(t, "200")

		svc := NewBalanceService(db, invest)
		synced := svc.SyncBatch(ctx, 10)
		assert.Equal(t, 2, synced)
	})

	t.Run("ApiFailureDoesNotAbort", func(t *testing.T) {
		db := setupTestDB(t)
		seedTestUser(t, db, "player1", 1, "0")

		invest := newFakeInvestClient()
		invest.failAll = true

		svc := NewBalanceService(db, invest)
		synced := svc.SyncBatch(ctx, 10)
		assert.Equal(t, 0, synced)
	})
}

func TestListUserGameRecords(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := seedTestUser(t, db, "player1", 1, "0")

	for i := 0; i < 3; i++ {
		record := &model.GameRecord{
			UserID:    user.ID,
			GameType:  "casino",
			BetAmount: mustDec(t, "1000"),
			WinAmount: mustDec(t, "500"),
			PlayedAt:  time.Date(2026, 8, 10+i, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, db.Create(record).Error)
	}

	svc := NewBalanceService(db, newFakeInvestClient())
	records, total, err := svc.ListUserGameRecords(ctx, user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, records, 2)
	// 按时间倒序
	assert.True(t, records[0].PlayedAt.After(records[1].PlayedAt))

	_, _, err = svc.ListUserGameRecords(ctx, 999, 1, 10)
	assert.Error(t, err)
}
