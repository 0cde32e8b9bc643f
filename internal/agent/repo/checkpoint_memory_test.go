package repo

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryluxor/server/internal/agent/model"
)

func TestMemoryThreadStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryThreadStore()

	require.NoError(t, store.Append(ctx, "t1", storedMessages()...))

	msgs, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	// callers get a copy
	msgs[0].Content = "changed"
	again, _ := store.Load(ctx, "t1")
	assert.Equal(t, "do you have sofas?", again[0].Content)

	require.NoError(t, store.Clear(ctx, "t1"))
	n, err := store.Count(ctx, "t1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryThreadStoreConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryThreadStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, "t1", model.StoredMessage{Role: "user", Content: "hi"})
		}()
	}
	wg.Wait()

	n, err := store.Count(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}
