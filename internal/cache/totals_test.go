package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orca/internal/engine"
	"github.com/noah-isme/backend-orca/internal/normalize"
)

func newTestCache(t *testing.T) *Totals {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTotals(client, time.Minute)
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)
	_, found, err := c.Get(context.Background(), Key("doc", 1))
	require.NoError(t, err)
	require.False(t, found)
}

func TestSetThenGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	res := engine.EvaluateJSON([]byte(`{
		"combinationMode": "sum",
		"honorariumPercent": 10,
		"campaigns": [{"id": "c1", "categories": [{"id": "k1", "offers": [{"id": "o1", "grossValue": 1000}]}]}]
	}`), normalize.Options{})
	key := Key("doc", 3)
	require.NoError(t, c.Set(ctx, key, res))

	got, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, got.Totals.GrandTotal.Equal(res.Totals.GrandTotal))
	require.Len(t, got.Budget.Campaigns, 1)
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Totals
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, Key("doc", 1), engine.Result{}))
	_, found, err := c.Get(ctx, Key("doc", 1))
	require.NoError(t, err)
	require.False(t, found)
}
