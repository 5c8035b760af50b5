package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lunatickworker/casino-sub002/internal/config"
	"github.com/lunatickworker/casino-sub002/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Partner{},
		&model.User{},
		&model.GameRecord{},
		&model.Transaction{},
		&model.Announcement{},
		&model.Message{},
		&model.OutboxMessage{},
	)
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				TransactionResult: "casino.transaction.result",
				Announcement:      "casino.announcement",
				Message:           "casino.message",
			},
		},
		Business: config.BusinessConfig{
			TransactionTimeoutMinutes: 30,
			MaxRetryCount:             5,
		},
	}
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func seedTestUser(t *testing.T, db *gorm.DB, username string, partnerID int64, balance string) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Nickname:  username,
		PartnerID: partnerID,
		Balance:   mustDec(t, balance),
		Status:    model.UserStatusActive,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// fakeInvestClient 内存版外部钱包，所有资金操作即时生效
type fakeInvestClient struct {
	balances    map[string]decimal.Decimal
	failAll     bool
	depositCnt  int
	withdrawCnt int
}

func newFakeInvestClient() *fakeInvestClient {
	return &fakeInvestClient{balances: make(map[string]decimal.Decimal)}
}

func (f *fakeInvestClient) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	if f.failAll {
		return decimal.Zero, errors.New("invest api unreachable")
	}
	return f.balances[username], nil
}

func (f *fakeInvestClient) Deposit(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	if f.failAll {
		return decimal.Zero, errors.New("invest api unreachable")
	}
	f.depositCnt++
	f.balances[username] = f.balances[username].Add(amount)
	return f.balances[username], nil
}

func (f *fakeInvestClient) Withdraw(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	if f.failAll {
		return decimal.Zero, errors.New("invest api unreachable")
	}
	f.withdrawCnt++
	f.balances[username] = f.balances[username].Sub(amount)
	return f.balances[username], nil
}
