package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      Transaction
		wantErr string
		check   func(t *testing.T, got Transaction)
	}{
		{
			name: "purchase derives total",
			in:   Transaction{Owner: "alice", Symbol: " btc ", Kind: Purchase, Quantity: d("2"), Price: d("100.5")},
			check: func(t *testing.T, got Transaction) {
				assert.Equal(t, "BTC", got.Symbol)
				assert.True(t, d("201").Equal(got.Total))
				assert.Equal(t, now, got.Time)
			},
		},
		{
			name: "explicit total is kept",
			in:   Transaction{Owner: "alice", Symbol: "BTC", Kind: Sale, Quantity: d("2"), Price: d("100"), Total: d("199")},
			check: func(t *testing.T, got Transaction) {
				assert.True(t, d("199").Equal(got.Total))
			},
		},
		{
			name: "airdrop forces zero cost",
			in:   Transaction{Owner: "alice", Symbol: "ARB", Kind: Airdrop, Quantity: d("10"), Price: d("1.2"), Total: d("12")},
			check: func(t *testing.T, got Transaction) {
				assert.True(t, got.Price.IsZero())
				assert.True(t, got.Total.IsZero())
			},
		},
		{
			name: "farming forces zero cost",
			in:   Transaction{Owner: "alice", Symbol: "CAKE", Kind: Farming, Quantity: d("3"), Price: d("2")},
			check: func(t *testing.T, got Transaction) {
				assert.True(t, got.Price.IsZero())
				assert.True(t, got.Total.IsZero())
			},
		},
		{
			name: "payment fields normalized",
			in: Transaction{Owner: "alice", Symbol: "ETH", Kind: Sale, Quantity: d("1"), Price: d("3000"),
				PaymentMethod: "Crypto", PaymentCurrency: "usdt"},
			check: func(t *testing.T, got Transaction) {
				assert.Equal(t, PaymentCrypto, got.PaymentMethod)
				assert.Equal(t, "USDT", got.PaymentCurrency)
			},
		},
		{
			name:    "missing symbol",
			in:      Transaction{Owner: "alice", Kind: Purchase, Quantity: d("1")},
			wantErr: "symbol is required",
		},
		{
			name:    "missing quantity",
			in:      Transaction{Owner: "alice", Symbol: "BTC", Kind: Purchase},
			wantErr: "quantity is required",
		},
		{
			name:    "negative quantity",
			in:      Transaction{Owner: "alice", Symbol: "BTC", Kind: Purchase, Quantity: d("-1")},
			wantErr: "quantity must not be negative",
		},
		{
			name:    "negative price",
			in:      Transaction{Owner: "alice", Symbol: "BTC", Kind: Purchase, Quantity: d("1"), Price: d("-3")},
			wantErr: "price must not be negative",
		},
		{
			name:    "unknown kind",
			in:      Transaction{Owner: "alice", Symbol: "BTC", Quantity: d("1")},
			wantErr: "unsupported kind",
		},
		{
			name:    "missing owner",
			in:      Transaction{Symbol: "BTC", Kind: Purchase, Quantity: d("1")},
			wantErr: "owner is required",
		},
		{
			name:    "unknown payment method",
			in:      Transaction{Owner: "alice", Symbol: "BTC", Kind: Sale, Quantity: d("1"), PaymentMethod: "barter"},
			wantErr: "unknown payment method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in, now)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalid))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestSortBreaksTiesBySeq(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "c", Seq: 3, Time: t0},
		{ID: "late", Seq: 1, Time: t0.Add(time.Hour)},
		{ID: "a", Seq: 1, Time: t0},
		{ID: "b", Seq: 2, Time: t0},
	}

	for i := 0; i < 5; i++ {
		cp := append([]Transaction(nil), txs...)
		Sort(cp)
		ids := []string{cp[0].ID, cp[1].ID, cp[2].ID, cp[3].ID}
		assert.Equal(t, []string{"a", "b", "c", "late"}, ids)
	}
}

func TestReplayableDropsSynthetic(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "leg", Seq: 2, Time: t0, Synthetic: true},
		{ID: "sale", Seq: 1, Time: t0},
	}
	out := Replayable(txs)
	require.Len(t, out, 1)
	assert.Equal(t, "sale", out[0].ID)
}

func TestPatchApply(t *testing.T) {
	base := Transaction{ID: "x", Owner: "alice", Symbol: "BTC", Kind: Purchase,
		Quantity: d("1"), Price: d("10"), Total: d("10")}

	qty := d("3")
	got := Patch{Quantity: &qty}.Apply(base)
	assert.True(t, got.Total.IsZero(), "total is re-derived on normalize")

	norm, err := Normalize(got, now)
	require.NoError(t, err)
	assert.True(t, d("30").Equal(norm.Total))

	kind := Sale
	notes := "trimmed"
	got = Patch{Kind: &kind, Notes: &notes}.Apply(base)
	assert.Equal(t, Sale, got.Kind)
	assert.Equal(t, "trimmed", got.Notes)
	assert.True(t, d("10").Equal(got.Total))

	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{Notes: &notes}.IsEmpty())
}

type stableSet map[string]bool

func (s stableSet) IsStableValue(sym string) bool { return s[sym] }

func TestConvertsToStable(t *testing.T) {
	reg := stableSet{"USDT": true}
	sale := Transaction{Kind: Sale, PaymentMethod: PaymentCrypto, PaymentCurrency: "USDT"}
	assert.True(t, sale.ConvertsToStable(reg))

	fiat := sale
	fiat.PaymentMethod = PaymentFiat
	assert.False(t, fiat.ConvertsToStable(reg))

	other := sale
	other.PaymentCurrency = "BTC"
	assert.False(t, other.ConvertsToStable(reg))

	buy := sale
	buy.Kind = Purchase
	assert.False(t, buy.ConvertsToStable(reg))
}

func TestFilterMatch(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tx := Transaction{Owner: "alice", Symbol: "BTC", Kind: Sale, Time: t0}

	assert.True(t, Filter{}.Match(tx))
	assert.True(t, Filter{Owner: "alice", Symbol: "BTC", Kind: Sale}.Match(tx))
	assert.False(t, Filter{Owner: "bob"}.Match(tx))
	assert.False(t, Filter{Kind: Purchase}.Match(tx))
	assert.True(t, Filter{From: t0, To: t0.Add(time.Second)}.Match(tx))
	assert.False(t, Filter{To: t0}.Match(tx))

	tx.Synthetic = true
	assert.False(t, Filter{}.Match(tx))
	assert.True(t, Filter{IncludeSynthetic: true}.Match(tx))
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Purchase, Airdrop, Farming, Sale} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("BUY")
	require.NoError(t, err)
	assert.Equal(t, Purchase, got)

	_, err = ParseKind("mint")
	assert.Error(t, err)
}
