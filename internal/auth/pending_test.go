package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/superset-client/internal/auth"
)

var errTestRejected = errors.New("rejected")

func TestPending_Resolved(t *testing.T) {
	t.Parallel()

	pending := auth.Resolved("abc")
	assert.True(t, pending.Settled())

	token, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestPending_Rejected(t *testing.T) {
	t.Parallel()

	pending := auth.Rejected(errTestRejected)
	assert.True(t, pending.Settled())

	token, err := pending.Wait(context.Background())
	require.ErrorIs(t, err, errTestRejected)
	assert.Empty(t, token)
}

func TestPending_FirstSettleWins(t *testing.T) {
	t.Parallel()

	pending := auth.NewPending()
	assert.False(t, pending.Settled())

	pending.Resolve("first")
	pending.Reject(errTestRejected)
	pending.Resolve("second")

	token, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", token)
}

func TestPending_WaitersSeeSameOutcome(t *testing.T) {
	t.Parallel()

	pending := auth.NewPending()

	var waitGroup sync.WaitGroup

	results := make([]string, 5)

	for i := range results {
		waitGroup.Add(1)

		go func(index int) {
			defer waitGroup.Done()

			token, err := pending.Wait(context.Background())
			assert.NoError(t, err)

			results[index] = token
		}(i)
	}

	time.Sleep(10 * time.Millisecond)
	pending.Resolve("shared")
	waitGroup.Wait()

	for _, token := range results {
		assert.Equal(t, "shared", token)
	}
}

func TestPending_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	pending := auth.NewPending()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pending.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, pending.Settled())
}

func TestPending_SettledBeatsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	token, err := auth.Resolved("ready").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ready", token)
}
