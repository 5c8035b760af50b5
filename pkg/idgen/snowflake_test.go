package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIDUnique(t *testing.T) {
	const n = 10000
	seen := make(map[int64]bool, n)
	prev := int64(0)

	for i := 0; i < n; i++ {
		id := NextID()
		assert.False(t, seen[id], "重复ID: %d", id)
		seen[id] = true
		assert.Greater(t, id, prev, "ID 必须严格递增")
		prev = id
	}
}

func TestNextIDConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 1000

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, NextID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				assert.False(t, seen[id], "并发下出现重复ID: %d", id)
				seen[id] = true
			}
		}()
	}
	wg.Wait()
}

func TestBusinessNumbers(t *testing.T) {
	trx := GenerateTransactionNo()
	assert.True(t, strings.HasPrefix(trx, "TRX"))
	assert.Len(t, trx, 3+14+8)

	msg := GenerateMessageNo()
	assert.True(t, strings.HasPrefix(msg, "MSG"))
	assert.Len(t, msg, 3+14+8)

	assert.NotEqual(t, trx, msg)
}
