package service

import (
	"context"
	"testing"

	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesPending", func(t *testing.T) {
		db := setupTestDB(t)
		seedTestUser(t, db, "player1", 1, "0")
		svc := NewTransactionService(db, nil, testConfig(), newFakeInvestClient())

		tx, err := svc.Request(ctx, &TransactionRequest{
			RequestID: "req-1",
			UserID:    1,
			Type:      model.TransactionTypeDeposit,
			Amount:    mustDec(t, "10000"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusPending, tx.Status)
		assert.NotEmpty(t, tx.TransactionNo)
	})

	t.Run("SameRequestIDIsIdempotent", func(t *testing.T) {
		db := setupTestDB(t)
		seedTestUser(t, db, "player1", 1, "0")
		svc := NewTransactionService(db, nil, testConfig(), newFakeInvestClient())

		req := &TransactionRequest{
			RequestID: "req-1",
			UserID:    1,
			Type:      model.TransactionTypeDeposit,
			Amount:    mustDec(t, "10000"),
		}
		first, err := svc.Request(ctx, req)
		require.NoError(t, err)
		second, err := svc.Request(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, first.TransactionNo, second.TransactionNo)

		var count int64
		require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("RejectsBadInput", func(t *testing.T) {
		db := setupTestDB(t)
		seedTestUser(t, db, "player1", 1, "0")
		svc := NewTransactionService(db, nil, testConfig(), newFakeInvestClient())

		_, err := svc.Request(ctx, &TransactionRequest{
			RequestID: "req-1", UserID: 1, Type: "TRANSFER", Amount: mustDec(t, "100"),
		})
		assert.Error(t, err)

		_, err = svc.Request(ctx, &TransactionRequest{
			RequestID: "req-2", UserID: 1, Type: model.TransactionTypeDeposit, Amount: mustDec(t, "-5"),
		})
		assert.Error(t, err)

		_, err = svc.Request(ctx, &TransactionRequest{
			RequestID: "req-3", UserID: 999, Type: model.TransactionTypeDeposit, Amount: mustDec(t, "100"),
		})
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}

func TestTransactionApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("DepositCompletes", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedTestUser(t, db, "player1", 1, "0")
		invest := newFakeInvestClient()
		svc := NewTransactionService(db, nil, testConfig(), invest)

		tx, err := svc.Request(ctx, &TransactionRequest{
			RequestID: "req-1", UserID: user.ID,
			Type: model.TransactionTypeDeposit, Amount: mustDec(t, "10000"),
		})
		require.NoError(t, err)

		got, err := svc.Approve(ctx, tx.TransactionNo, "admin")
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusCompleted, got.Status)
		assert.Equal(t, "admin", got.Operator)
		assert.NotNil(t, got.ProcessedAt)
		assert.Equal(t, 1, invest.depositCnt)

		// 余额快照已更新
		var refreshed model.User
		require.NoError(t, db.First(&refreshed, user.ID).Error)
		assert.True(t, refreshed.Balance.Equal(mustDec(t, "10000")))
		assert.NotNil(t, refreshed.ApiSyncedAt)

		// 审核结果事件已写入发件箱
		var outbox []model.OutboxMessage
		require.NoError(t, db.Find(&outbox).Error)
		require.Len(t, outbox, 1)
		assert.Equal(t, model.EventTypeTransactionResult, outbox[0].EventType)
		assert.Equal(t, tx.TransactionNo, outbox[0].MessageKey)
		assert.Equal(t, model.OutboxStatusPending, outbox[0].Status)
	})

	t.Run("WithdrawalNeedsBalance", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedTestUser(t, db, "player1", 1, "500")
		svc := NewTransactionService(db, nil, testConfig(), newFakeInvestClient())

		tx, err := svc.Request(ctx, &TransactionRequest{
			RequestID: "req-1", UserID: user.ID,
			Type: model.TransactionTypeWithdrawal, Amount: mustDec(t, "1000"),
		})
		require.NoError(t, err)

		_, err = svc.Approve(ctx, tx.TransactionNo, "admin")
		assert.ErrorIs(t, err, ErrBalanceNotEnough)

		// 交易仍然停留在 PENDING
		got, err := svc.GetTransaction(ctx, tx.TransactionNo)
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusPending, got.Status)
	})

	t.Run("InvestFailureRollsBack", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedTestUser(t, db, "player1", 1, "0")
		invest := newFakeInvestClient()
		svc := NewTransactionService(db, nil, testConfig(), invest)

		tx, err := svc.Request(ctx, &TransactionRequest{
			RequestID: "req-1", UserID: user.ID,
			Type: model.TransactionTypeDeposit, Amount: mustDec(t, "10000"),
		})
		require.NoError(t, err)

		invest.failAll = true
		_, err = svc.Approve(ctx, tx.TransactionNo, "admin")
		require.Error(t, err)

		// 状态回滚到 PENDING，发件箱没有残留事件
		got, err := svc.GetTransaction(ctx, tx.TransactionNo)
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusPending, got.Status)

		var count int64
		require.NoError(t, db.Model(&model.OutboxMessage{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("OnlyPendingApproves", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedTestUser(t, db, "player1", 1, "0")
		svc := NewTransactionService(db, nil, testConfig(), newFakeInvestClient())

		tx, err := svc.Request(ctx, &TransactionRequest{
			RequestID: "req-1", UserID: user.ID,
			Type: model.TransactionTypeDeposit, Amount: mustDec(t, "10000"),
		})
		require.NoError(t, err)

		_, err = svc.Approve(ctx, tx.TransactionNo, "admin")
		require.NoError(t, err)

		// 重复审核必须被状态机挡住
		_, err = svc.Approve(ctx, tx.TransactionNo, "admin")
		assert.ErrorIs(t, err, repository.ErrStatusInvalid)
	})
}

func TestTransactionReject(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := seedTestUser(t, db, "player1", 1, "0")
	invest := newFakeInvestClient()
	svc := NewTransactionService(db, nil, testConfig(), invest)

	tx, err := svc.Request(ctx, &TransactionRequest{
		RequestID: "req-1", UserID: user.ID,
		Type: model.TransactionTypeWithdrawal, Amount: mustDec(t, "1000"),
	})
	require.NoError(t, err)

	got, err := svc.Reject(ctx, tx.TransactionNo, "admin", "资料审核未通过")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusRejected, got.Status)
	assert.Equal(t, "资料审核未通过", got.Memo)
	assert.NotNil(t, got.ProcessedAt)

	// 拒绝不触发任何资金操作
	assert.Equal(t, 0, invest.depositCnt)
	assert.Equal(t, 0, invest.withdrawCnt)

	// 事件照常入箱
	var outbox []model.OutboxMessage
	require.NoError(t, db.Find(&outbox).Error)
	require.Len(t, outbox, 1)
}
