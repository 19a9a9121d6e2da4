package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnowflake_WorkerRange(t *testing.T) {
	_, err := NewSnowflake(-1)
	assert.Error(t, err)
	_, err = NewSnowflake(maxWorkerID + 1)
	assert.Error(t, err)

	s, err := NewSnowflake(maxWorkerID)
	require.NoError(t, err)
	assert.NotZero(t, s.Generate())
}

func TestSnowflake_UniqueAndIncreasing(t *testing.T) {
	s, err := NewSnowflake(7)
	require.NoError(t, err)

	prev := int64(0)
	for i := 0; i < 10000; i++ {
		id := s.Generate()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestSnowflake_Concurrent(t *testing.T) {
	s, err := NewSnowflake(3)
	require.NoError(t, err)

	const workers, perWorker = 8, 2000
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, s.Generate())
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestGenerateReferenceNo(t *testing.T) {
	ref := GenerateReferenceNo()
	assert.True(t, strings.HasPrefix(ref, "BS"))
	assert.Len(t, ref, 2+14+8)
	assert.NotEqual(t, ref, GenerateReferenceNo())
}

func TestNextID_ConcurrentFirstUse(t *testing.T) {
	const workers = 16
	ids := make([]int64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = NextID()
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]struct{}, workers)
	for _, id := range ids {
		require.NotZero(t, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers)
}
