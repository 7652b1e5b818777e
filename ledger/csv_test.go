package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()

	in := []Transaction{
		{
			ID: "A", Owner: "alice", Symbol: "BTC", Kind: Purchase,
			Quantity: d("0.25"), Price: d("40000"), Total: d("10000"),
			Time: now, Category: "core", Notes: "first, with comma",
		},
		{
			ID: "B", Owner: "alice", Symbol: "BTC", Kind: Sale,
			Quantity: d("0.1"), Price: d("50000"), Total: d("5000"),
			Time: now.Add(36 * time.Hour), PaymentMethod: PaymentCrypto, PaymentCurrency: "USDT",
		},
	}

	path := filepath.Join(t.TempDir(), "ledger.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteCSV(f, in))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(CSVHeader, ",")+"\n"))

	out, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, out, 2)

	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Kind, out[i].Kind)
		assert.True(t, in[i].Quantity.Equal(out[i].Quantity))
		assert.True(t, in[i].Total.Equal(out[i].Total))
		assert.True(t, in[i].Time.Equal(out[i].Time))
		assert.Equal(t, in[i].PaymentMethod, out[i].PaymentMethod)
		assert.Equal(t, in[i].PaymentCurrency, out[i].PaymentCurrency)
		assert.Equal(t, in[i].Notes, out[i].Notes)
	}
}

func TestReadCSVMinimalColumns(t *testing.T) {
	t.Parallel()

	src := "Symbol, Kind, Quantity, Price\nETH, buy, 2, 1500\nARB, airdrop, 100,\n"
	out, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "ETH", out[0].Symbol)
	assert.Equal(t, Purchase, out[0].Kind)
	assert.Equal(t, "1500", out[0].Price.String())
	assert.True(t, out[0].Time.IsZero())

	assert.Equal(t, Airdrop, out[1].Kind)
	assert.True(t, out[1].Price.IsZero())
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing column", "symbol,kind\nBTC,buy\n", `missing column "quantity"`},
		{"bad kind", "symbol,kind,quantity\nBTC,swap,1\n", "line 2"},
		{"bad number", "symbol,kind,quantity\nBTC,buy,1\nBTC,buy,lots\n", "line 3: quantity"},
		{"bad time", "symbol,kind,quantity,time\nBTC,buy,1,yesterday\n", "line 2: time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadCSVEmpty(t *testing.T) {
	t.Parallel()

	out, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, out)
}
