package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 分布式锁实现
// ============================================================================
//
// 【为什么审核需要分布式锁？】
//
// 场景：两个运营人员同时点了同一笔提现的"批准"按钮
//
// 如果没有分布式锁：
//   goroutine1: 查询状态=PENDING -> 调 Invest API 扣款 -> 更新状态
//   goroutine2: 查询状态=PENDING -> 再调一次 Invest API 扣款  重复扣款！
//
// 加了分布式锁后，同一个玩家的审核操作串行执行，第二个请求
// 拿到锁时状态已经不是 PENDING，状态机校验会直接拒绝。
//
// 【Redis 分布式锁原理】
//
// 加锁：SET key value NX EX timeout
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 设置过期时间（防止死锁）
//   - value: 锁持有者标识（释放时验证，防止误删别人的锁）
//
// 释放锁：使用 Lua 脚本保证"检查+删除"的原子性
//
// ============================================================================

var (
	ErrLockFailed  = errors.New("获取分布式锁失败")
	ErrLockExpired = errors.New("锁已过期")
)

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string        // 锁的 key
	value      string        // 锁的 value（用于验证锁的持有者）
	expiration time.Duration // 锁的过期时间
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	// SET key value NX EX timeout
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
			// 继续重试
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
//
// 【关键点】先校验 value 再删除，避免 A 的锁过期后误删 B 刚拿到的锁，
// Lua 脚本保证两步操作原子执行
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// ============================================================================
// 便捷函数：基于玩家维度的审核锁
// ============================================================================

// NewApproveLock 创建审核锁（按玩家维度）
//
// 按玩家而不是按交易加锁：同一玩家的充值和提现审核也需要串行，
// 否则提现审核读到的余额可能是充值审核中途的脏数据。
// 不同玩家之间互不影响，可以并发审核。
func NewApproveLock(client *redis.Client, userID int64, transactionNo string) *DistributedLock {
	key := fmt.Sprintf("tx:approve:user:%d", userID)
	// value 使用交易号，便于追踪是哪笔审核持有锁
	return NewDistributedLock(client, key, transactionNo, 30*time.Second)
}
