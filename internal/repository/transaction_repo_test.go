package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTransaction(t *testing.T, db *gorm.DB, no, requestID, txType, status, amount string) *model.Transaction {
	t.Helper()
	tx := &model.Transaction{
		TransactionNo: no,
		RequestID:     requestID,
		UserID:        1,
		Type:          txType,
		Amount:        mustDec(t, amount),
		Status:        status,
	}
	require.NoError(t, db.Create(tx).Error)
	return tx
}

func TestTransactionUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("PendingToApproved", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTransactionRepository(db)
		seedTransaction(t, db, "T1", "r1", model.TransactionTypeDeposit, model.TransactionStatusPending, "100")

		err := repo.UpdateStatus(ctx, nil, "T1", model.TransactionStatusPending, model.TransactionStatusApproved, "admin")
		require.NoError(t, err)

		got, err := repo.GetByTransactionNo(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusApproved, got.Status)
		assert.Equal(t, "admin", got.Operator)
	})

	t.Run("CompletedSetsProcessedAt", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTransactionRepository(db)
		seedTransaction(t, db, "T1", "r1", model.TransactionTypeDeposit, model.TransactionStatusApproved, "100")

		err := repo.UpdateStatus(ctx, nil, "T1", model.TransactionStatusApproved, model.TransactionStatusCompleted, "admin")
		require.NoError(t, err)

		got, err := repo.GetByTransactionNo(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusCompleted, got.Status)
		assert.NotNil(t, got.ProcessedAt)
	})

	t.Run("IllegalTransitionRejected", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTransactionRepository(db)
		seedTransaction(t, db, "T1", "r1", model.TransactionTypeDeposit, model.TransactionStatusCompleted, "100")

		err := repo.UpdateStatus(ctx, nil, "T1", model.TransactionStatusCompleted, model.TransactionStatusPending, "admin")
		assert.ErrorIs(t, err, ErrStatusInvalid)
	})

	t.Run("ConcurrentModificationDetected", func(t *testing.T) {
		// 状态机允许 PENDING->APPROVED，但行里已经不是 PENDING，CAS 必须失败
		db := setupTestDB(t)
		repo := NewTransactionRepository(db)
		seedTransaction(t, db, "T1", "r1", model.TransactionTypeDeposit, model.TransactionStatusRejected, "100")

		err := repo.UpdateStatus(ctx, nil, "T1", model.TransactionStatusPending, model.TransactionStatusApproved, "admin")
		assert.ErrorIs(t, err, ErrStatusInvalid)
	})
}

func TestTransactionGetByRequestID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	seedTransaction(t, db, "T1", "req-abc", model.TransactionTypeDeposit, model.TransactionStatusPending, "100")

	got, err := repo.GetByRequestID(ctx, "req-abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "T1", got.TransactionNo)

	// 不存在时返回 nil, nil，调用方据此判断幂等
	missing, err := repo.GetByRequestID(ctx, "req-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTransactionGetExpiredPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	stale := seedTransaction(t, db, "T1", "r1", model.TransactionTypeDeposit, model.TransactionStatusPending, "100")
	// 回拨创建时间，模拟超时未审核
	staleAt := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(stale).Update("created_at", staleAt).Error)

	seedTransaction(t, db, "T2", "r2", model.TransactionTypeDeposit, model.TransactionStatusPending, "200")
	seedTransaction(t, db, "T3", "r3", model.TransactionTypeDeposit, model.TransactionStatusCompleted, "300")

	expired, err := repo.GetExpiredPending(ctx, time.Now().Add(-30*time.Minute), 100)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "T1", expired[0].TransactionNo)
}
