package broker

import (
	"context"
	"errors"
	"testing"

	"portfolio-api/internal/store"
	"portfolio-api/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailableFailsEveryCall(t *testing.T) {
	b := Unavailable(2)
	ctx := context.Background()

	_, err := b.ListOrders(ctx, types.OrderStatusAll, 10)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Contains(t, err.Error(), "account 2")

	_, err = b.ListPositions(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = b.AccountSummary(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = b.EquityHistory(ctx, types.WindowDay)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewAllHonoursCredentials(t *testing.T) {
	cfg := store.DefaultConfig()
	t.Setenv("ALPACA_API_KEY", "key")
	t.Setenv("ALPACA_SECRET_KEY", "secret")
	t.Setenv("ALPACA_API_KEY_2", "")
	t.Setenv("ALPACA_SECRET_KEY_2", "")

	brokers := NewAll(cfg)
	require.Len(t, brokers, 2)
	assert.False(t, IsUnavailable(brokers[1]))
	assert.True(t, IsUnavailable(brokers[2]))
}
