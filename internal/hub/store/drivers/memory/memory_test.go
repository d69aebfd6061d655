package memory_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/internal/hub/store/drivers/memory"
	"github.com/aussiebroadwan/hub/internal/hub/store/storetest"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	storetest.RunKV(t, func(t *testing.T) store.KV { return memory.New() })
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	d := memory.New()

	buf := []byte("abc")
	require.NoError(t, d.Set(ctx, "k", buf))
	buf[0] = 'z'

	got, err := d.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
}

func TestMemoryClosed(t *testing.T) {
	d := memory.New()
	require.NoError(t, d.Close())
	_, err := d.Get(context.Background(), "k")
	require.ErrorIs(t, err, store.ErrClosed)
}
