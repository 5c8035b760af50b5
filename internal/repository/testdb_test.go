package repository

import (
	"testing"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 每个用例独立的内存库，用例间互不污染
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存库绑定在单个连接上，连接池必须收敛到 1，
	// 否则第二个连接看到的是一个空库
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
