package costbasis

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rustyeddy/holdings/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(seq int64, kind ledger.Kind, sym, qty, price string, day int) ledger.Transaction {
	q, p := d(qty), d(price)
	return ledger.Transaction{
		ID:       sym + "-" + string(rune('0'+seq)),
		Seq:      seq,
		Owner:    "alice",
		Symbol:   sym,
		Kind:     kind,
		Quantity: q,
		Price:    p,
		Total:    q.Mul(p),
		Time:     t0.AddDate(0, 0, day),
	}
}

func calc() *Calculator {
	return NewCalculator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func twoLotsOneSale() []ledger.Transaction {
	return []ledger.Transaction{
		tx(1, ledger.Purchase, "X", "10", "10", 0),
		tx(2, ledger.Purchase, "X", "10", "20", 1),
		tx(3, ledger.Sale, "X", "5", "30", 2),
	}
}

func TestFIFOAndLIFODiverge(t *testing.T) {
	fifo, err := calc().Calculate(twoLotsOneSale(), FIFO)
	require.NoError(t, err)
	lifo, err := calc().Calculate(twoLotsOneSale(), LIFO)
	require.NoError(t, err)

	f, ok := fifo.Asset("X")
	require.True(t, ok)
	l, ok := lifo.Asset("X")
	require.True(t, ok)

	require.Len(t, f.Sales, 1)
	require.Len(t, l.Sales, 1)

	assert.Equal(t, "10", f.Sales[0].CostBasisPerUnit.String())
	assert.Equal(t, "100", f.Sales[0].Gain.String())
	assert.Equal(t, FIFO, f.Sales[0].Method)

	assert.Equal(t, "20", l.Sales[0].CostBasisPerUnit.String())
	assert.Equal(t, "50", l.Sales[0].Gain.String())
	assert.Equal(t, LIFO, l.Sales[0].Method)

	assert.False(t, fifo.TotalGain.Equal(lifo.TotalGain))
}

func TestAverage(t *testing.T) {
	rep, err := calc().Calculate(twoLotsOneSale(), Average)
	require.NoError(t, err)

	a, _ := rep.Asset("X")
	require.Len(t, a.Sales, 1)
	assert.Equal(t, "15", a.Sales[0].CostBasisPerUnit.String())
	assert.Equal(t, "75", a.Sales[0].Gain.String())
	assert.Equal(t, "100", a.Sales[0].GainPercent.String())
	assert.Equal(t, "15", a.Remaining.String())
	assert.Equal(t, "20", a.TotalAcquired.String())
	assert.Equal(t, "5", a.TotalSold.String())
}

func TestAverageReducesProportionally(t *testing.T) {
	txs := []ledger.Transaction{
		tx(1, ledger.Purchase, "X", "10", "10", 0),
		tx(2, ledger.Sale, "X", "4", "12", 1),
		tx(3, ledger.Purchase, "X", "6", "20", 2),
		tx(4, ledger.Sale, "X", "12", "20", 3),
	}
	rep, err := calc().Calculate(txs, Average)
	require.NoError(t, err)

	a, _ := rep.Asset("X")
	require.Len(t, a.Sales, 2)
	// 6 units left at 10, plus 6 at 20: 180 for 12 units.
	assert.Equal(t, "180", a.Sales[1].CostBasis.String())
	assert.Equal(t, "60", a.Sales[1].Gain.String())
	assert.True(t, a.Remaining.IsZero())
}

func TestFIFOSplitsLotsAcrossSales(t *testing.T) {
	txs := []ledger.Transaction{
		tx(1, ledger.Purchase, "X", "10", "10", 0),
		tx(2, ledger.Purchase, "X", "10", "20", 1),
		tx(3, ledger.Sale, "X", "5", "30", 2),
		tx(4, ledger.Sale, "X", "8", "30", 3),
	}
	rep, err := calc().Calculate(txs, FIFO)
	require.NoError(t, err)

	a, _ := rep.Asset("X")
	require.Len(t, a.Sales, 2)
	// Remaining 5 of the first lot plus 3 of the second.
	assert.Equal(t, "110", a.Sales[1].CostBasis.String())
	assert.Equal(t, "7", a.Remaining.String())
	assert.Equal(t, "230", a.RealizedGain.String())
}

func TestLIFOSplitsLotsAcrossSales(t *testing.T) {
	txs := []ledger.Transaction{
		tx(1, ledger.Purchase, "X", "10", "10", 0),
		tx(2, ledger.Purchase, "X", "10", "20", 1),
		tx(3, ledger.Sale, "X", "12", "30", 2),
	}
	rep, err := calc().Calculate(txs, LIFO)
	require.NoError(t, err)

	a, _ := rep.Asset("X")
	require.Len(t, a.Sales, 1)
	assert.Equal(t, "220", a.Sales[0].CostBasis.String())
	assert.Equal(t, "8", a.Remaining.String())
}

func TestInsufficientLotsSkipsSale(t *testing.T) {
	txs := []ledger.Transaction{
		tx(1, ledger.Purchase, "X", "3", "10", 0),
		tx(2, ledger.Sale, "X", "5", "30", 1),
		tx(3, ledger.Purchase, "Y", "1", "100", 0),
		tx(4, ledger.Sale, "Y", "1", "150", 1),
	}

	var logs bytes.Buffer
	c := NewCalculator(slog.New(slog.NewTextHandler(&logs, nil)))

	for _, m := range []Method{FIFO, LIFO, Average} {
		logs.Reset()
		rep, err := c.Calculate(txs, m)
		require.NoError(t, err)

		x, _ := rep.Asset("X")
		assert.Empty(t, x.Sales, m.String())
		require.Len(t, x.Skipped, 1, m.String())
		assert.Equal(t, "X-2", x.Skipped[0].TransactionID)
		assert.Equal(t, "3", x.Skipped[0].Available.String())
		assert.True(t, x.RealizedGain.IsZero())
		assert.Equal(t, "3", x.Remaining.String())

		assert.Equal(t, "50", rep.TotalGain.String(), m.String())
		assert.Contains(t, logs.String(), "insufficient lots")
	}
}

func TestAirdropLotsHaveZeroCost(t *testing.T) {
	txs := []ledger.Transaction{
		tx(1, ledger.Airdrop, "ARB", "10", "0", 0),
		tx(2, ledger.Sale, "ARB", "4", "2", 1),
	}
	rep, err := calc().Calculate(txs, FIFO)
	require.NoError(t, err)

	a, _ := rep.Asset("ARB")
	require.Len(t, a.Sales, 1)
	assert.True(t, a.Sales[0].CostBasis.IsZero())
	assert.Equal(t, "8", a.Sales[0].Gain.String())
	assert.True(t, a.Sales[0].GainPercent.IsZero())
}

func TestFarmingIsNotLotTracked(t *testing.T) {
	txs := []ledger.Transaction{
		tx(1, ledger.Farming, "CAKE", "10", "0", 0),
		tx(2, ledger.Sale, "CAKE", "1", "2", 1),
	}
	rep, err := calc().Calculate(txs, FIFO)
	require.NoError(t, err)

	a, ok := rep.Asset("CAKE")
	require.True(t, ok)
	assert.True(t, a.TotalAcquired.IsZero())
	assert.Len(t, a.Skipped, 1)
}

func TestSameTimestampUsesSeq(t *testing.T) {
	txs := []ledger.Transaction{
		tx(2, ledger.Sale, "X", "1", "5", 0),
		tx(1, ledger.Purchase, "X", "1", "3", 0),
	}
	rep, err := calc().Calculate(txs, FIFO)
	require.NoError(t, err)

	a, _ := rep.Asset("X")
	require.Len(t, a.Sales, 1)
	assert.Equal(t, "2", a.Sales[0].Gain.String())
}

func TestAssetsSortedAndTotals(t *testing.T) {
	txs := []ledger.Transaction{
		tx(1, ledger.Purchase, "ZEC", "1", "10", 0),
		tx(2, ledger.Purchase, "ADA", "1", "10", 0),
		tx(3, ledger.Sale, "ZEC", "1", "15", 1),
		tx(4, ledger.Sale, "ADA", "1", "5", 1),
	}
	rep, err := calc().Calculate(txs, FIFO)
	require.NoError(t, err)

	require.Len(t, rep.Assets, 2)
	assert.Equal(t, "ADA", rep.Assets[0].Symbol)
	assert.Equal(t, "ZEC", rep.Assets[1].Symbol)
	assert.Equal(t, "20", rep.TotalProceeds.String())
	assert.Equal(t, "20", rep.TotalCostBasis.String())
	assert.True(t, rep.TotalGain.IsZero())
}

func TestUnsupportedMethod(t *testing.T) {
	_, err := calc().Calculate(twoLotsOneSale(), Method(9))
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	for _, m := range []Method{FIFO, LIFO, Average} {
		got, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMethod("hifo")
	assert.Error(t, err)

	var m Method
	require.NoError(t, m.UnmarshalText([]byte("LIFO")))
	assert.Equal(t, LIFO, m)
}
