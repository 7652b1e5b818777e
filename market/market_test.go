package market

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableSet(t *testing.T) {
	s := NewStableSet("usdt", " USDC ", "")
	assert.True(t, s.IsStableValue("USDT"))
	assert.True(t, s.IsStableValue("usdc"))
	assert.False(t, s.IsStableValue("BTC"))
	assert.Equal(t, []string{"USDC", "USDT"}, s.Symbols())
}

func TestStaticPrices(t *testing.T) {
	ctx := context.Background()
	sp := NewStaticPrices(map[string]float64{"btc": 50000})

	p, err := sp.Price(ctx, "BTC")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50000).Equal(p))

	_, err = sp.Price(ctx, "ETH")
	assert.True(t, errors.Is(err, ErrNoPrice))

	sp.Set("eth", decimal.NewFromInt(3000))
	p, err = sp.Price(ctx, "ETH")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3000).Equal(p))
}

func TestLoadPriceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte("BTC: \"61000.25\"\neth: \"3100\"\n"), 0644))

	sp, err := LoadPriceFile(path)
	require.NoError(t, err)

	p, err := sp.Price(context.Background(), "ETH")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3100).Equal(p))

	p, err = sp.Price(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "61000.25", p.String())
}

func TestLoadPriceFileBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte("BTC: lots\n"), 0644))

	_, err := LoadPriceFile(path)
	assert.Error(t, err)
}
