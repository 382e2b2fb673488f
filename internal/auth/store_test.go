package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/superset-client/internal/auth"
	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

var (
	errTestNoToken = errors.New("no token")
	errTestFailed  = errors.New("fetch failed")
)

func TestTokenStore(t *testing.T) {
	t.Parallel()
	t.Run("new store without token", testNewStoreWithoutToken)
	t.Run("new store with token", testNewStoreWithToken)
	t.Run("empty token counts as present", testEmptyTokenPresent)
	t.Run("begin clears token and swaps pending", testBeginSwapsPending)
	t.Run("complete resolves with fetched token", testCompleteResolves)
	t.Run("complete rejects without token", testCompleteRejects)
	t.Run("concurrent begins last write wins", testConcurrentBegins)
	t.Run("complete after a newer begin keeps its token", testCompleteAfterNewBegin)
}

func testNewStoreWithoutToken(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore(nil, errTestNoToken)

	_, ok := store.Token()
	assert.False(t, ok)
	assert.Equal(t, superset.StateUnconfigured, store.State())

	_, err := store.Pending().Wait(context.Background())
	require.ErrorIs(t, err, errTestNoToken)
}

func testNewStoreWithToken(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore(superset.StringPtr("abc"), errTestNoToken)

	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	assert.Equal(t, superset.StateAuthenticated, store.State())

	token, err := store.Pending().Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func testEmptyTokenPresent(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore(superset.StringPtr(""), errTestNoToken)

	token, ok := store.Token()
	assert.True(t, ok)
	assert.Empty(t, token)
	assert.Equal(t, superset.StateAuthenticated, store.State())
}

func testBeginSwapsPending(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore(superset.StringPtr("old"), errTestNoToken)
	before := store.Pending()

	pending := store.Begin()

	assert.NotSame(t, before, pending)
	assert.Same(t, pending, store.Pending())
	assert.Equal(t, superset.StatePending, store.State())

	_, ok := store.Token()
	assert.False(t, ok)

	last, ok := store.LastKnown()
	assert.True(t, ok)
	assert.Equal(t, "old", last)
}

func testCompleteResolves(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore(nil, errTestNoToken)
	pending := store.Begin()

	token, err := store.Complete(pending, superset.StringPtr("fresh"), errTestFailed)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, superset.StateAuthenticated, store.State())

	token, err = pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	last, ok := store.LastKnown()
	assert.True(t, ok)
	assert.Equal(t, "fresh", last)
}

func testCompleteRejects(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore(nil, errTestNoToken)
	pending := store.Begin()

	_, err := store.Complete(pending, nil, errTestFailed)
	require.ErrorIs(t, err, errTestFailed)
	assert.Equal(t, superset.StateFailed, store.State())

	_, err = pending.Wait(context.Background())
	require.ErrorIs(t, err, errTestFailed)
}

func testConcurrentBegins(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore(nil, errTestNoToken)

	first := store.Begin()
	second := store.Begin()

	assert.Same(t, second, store.Pending())

	_, err := store.Complete(second, superset.StringPtr("from-second"), errTestFailed)
	require.NoError(t, err)

	// The first fetch failed but settles after the second and still sees a token.
	token, err := store.Complete(first, nil, errTestFailed)
	require.NoError(t, err)
	assert.Equal(t, "from-second", token)
}

func testCompleteAfterNewBegin(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore(nil, errTestNoToken)

	first := store.Begin()
	second := store.Begin()

	// The first fetch succeeds while the second is still in flight.
	token, err := store.Complete(first, superset.StringPtr("from-first"), errTestFailed)
	require.NoError(t, err)
	assert.Equal(t, "from-first", token)

	token, err = first.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-first", token)

	assert.False(t, second.Settled())
	assert.Same(t, second, store.Pending())
	assert.Equal(t, superset.StatePending, store.State())

	token, err = store.Complete(second, superset.StringPtr("from-second"), errTestFailed)
	require.NoError(t, err)
	assert.Equal(t, "from-second", token)

	current, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "from-second", current)
}
