// Package storetest holds a conformance suite shared by every KV driver.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/stretchr/testify/require"
)

// RunKV exercises the store.KV contract against a fresh driver from newKV.
func RunKV(t *testing.T, newKV func(t *testing.T) store.KV) {
	t.Helper()

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		kv := newKV(t)
		_, err := kv.Get(context.Background(), "tokens")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		ctx := context.Background()
		kv := newKV(t)

		require.NoError(t, kv.Set(ctx, "tokens", []byte("one")))
		got, err := kv.Get(ctx, "tokens")
		require.NoError(t, err)
		require.Equal(t, []byte("one"), got)
	})

	t.Run("set overwrites", func(t *testing.T) {
		ctx := context.Background()
		kv := newKV(t)

		require.NoError(t, kv.Set(ctx, "session", []byte("one")))
		require.NoError(t, kv.Set(ctx, "session", []byte("two")))
		got, err := kv.Get(ctx, "session")
		require.NoError(t, err)
		require.Equal(t, []byte("two"), got)
	})

	t.Run("delete removes and is idempotent", func(t *testing.T) {
		ctx := context.Background()
		kv := newKV(t)

		require.NoError(t, kv.Set(ctx, "invitations", []byte("x")))
		require.NoError(t, kv.Delete(ctx, "invitations"))
		_, err := kv.Get(ctx, "invitations")
		require.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, kv.Delete(ctx, "invitations"))
		require.NoError(t, kv.Delete(ctx, "never_set"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		ctx := context.Background()
		kv := newKV(t)

		require.NoError(t, kv.Set(ctx, "tokens", []byte("a")))
		require.NoError(t, kv.Set(ctx, "invitations", []byte("b")))
		require.NoError(t, kv.Delete(ctx, "tokens"))

		got, err := kv.Get(ctx, "invitations")
		require.NoError(t, err)
		require.Equal(t, []byte("b"), got)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newKV(t).Ping(context.Background()))
	})

	t.Run("concurrent writers", func(t *testing.T) {
		ctx := context.Background()
		kv := newKV(t)

		var wg sync.WaitGroup
		for range 16 {
			wg.Go(func() {
				_ = kv.Set(ctx, "tokens", []byte("v"))
				_, _ = kv.Get(ctx, "tokens")
			})
		}
		wg.Wait()

		got, err := kv.Get(ctx, "tokens")
		require.NoError(t, err)
		require.Equal(t, []byte("v"), got)
	})
}
