package report

import (
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/holdings/costbasis"
	"github.com/rustyeddy/holdings/gains"
	"github.com/rustyeddy/holdings/ledger"
	"github.com/rustyeddy/holdings/portfolio"
	"github.com/rustyeddy/holdings/tracker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var at = time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatGainOrg(t *testing.T) {
	t.Parallel()

	g := gains.RealizedGain{
		ID:               "gain-1",
		TransactionID:    "sale-12345678-abcd",
		Symbol:           "X",
		Currency:         "USDT",
		Quantity:         d("5"),
		CostBasisPerUnit: d("15"),
		SalePrice:        d("30"),
		CostBasis:        d("75"),
		Proceeds:         d("150"),
		Gain:             d("75"),
		GainPercent:      d("100"),
		Time:             at,
	}

	result := FormatGainOrg(g)

	assert.Contains(t, result, "** Gain: X 75.00 (sale-123)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRANSACTION_ID: sale-12345678-abcd")
	assert.Contains(t, result, ":CURRENCY: USDT")
	assert.Contains(t, result, ":COST_BASIS: 75.00")
	assert.Contains(t, result, ":PROCEEDS: 150.00")
	assert.Contains(t, result, ":GAIN_PERCENT: 100.00%")
	assert.Contains(t, result, ":TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":END:")

	two := FormatGainsOrg([]gains.RealizedGain{g, g})
	assert.Equal(t, 2, strings.Count(two, "** Gain:"))
	assert.Empty(t, FormatGainsOrg(nil))
}

func TestFormatPortfolioOrg(t *testing.T) {
	t.Parallel()

	p := portfolio.Portfolio{
		Owner: "alice",
		Holdings: []portfolio.Holding{
			{Symbol: "X", Quantity: d("15"), AveragePrice: d("15"), Origin: portfolio.OriginPurchased},
			{Symbol: "USDT", Quantity: d("150"), AveragePrice: d("1"), Origin: portfolio.OriginStable},
		},
		UpdatedAt: at,
	}

	result := FormatPortfolioOrg(p)
	lines := strings.Split(strings.TrimSpace(result), "\n")

	assert.Equal(t, "* Portfolio: alice", lines[0])
	assert.Contains(t, result, "Updated: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, "| Symbol | Quantity | Avg Price | Cost | Origin | Category |")
	assert.Contains(t, result, "|---+---+---+---+---+---|")
	assert.Contains(t, result, "| X | 15 | 15 | 225.00 | purchased |  |")
	assert.Contains(t, result, "| USDT | 150 | 1 | 150.00 | stable |  |")
}

func TestFormatValuationOrgMarksUnpriced(t *testing.T) {
	t.Parallel()

	v := portfolio.Valuation{
		Owner: "alice",
		Holdings: []portfolio.HoldingValue{
			{
				Holding: portfolio.Holding{Symbol: "X", Quantity: d("2")},
				Priced:  true, Price: d("20"), Value: d("40"), Cost: d("30"),
				Unrealized: d("10"), UnrealizedPercent: d("33.3333"),
			},
			{Holding: portfolio.Holding{Symbol: "OBSCURE", Quantity: d("7")}, Cost: d("7")},
		},
		TotalValue: d("40"),
		TotalCost:  d("30"),
		Unrealized: d("10"),
	}

	result := FormatValuationOrg(v)

	assert.Contains(t, result, "| X | 2 | 20 | 40.00 | 30.00 | 10.00 | 33.33% |")
	assert.Contains(t, result, "| OBSCURE | 7 | n/a | n/a | 7.00 | n/a | n/a |")
	assert.Contains(t, result, "| Total |  |  | 40.00 | 30.00 | 10.00 | 0.00% |")
}

func TestFormatTransactionsOrg(t *testing.T) {
	t.Parallel()

	txs := []ledger.Transaction{
		{ID: "01HXYZABCDEF", Symbol: "X", Kind: ledger.Sale, Quantity: d("5"), Price: d("30"), Total: d("150"),
			Time: at, PaymentMethod: ledger.PaymentCrypto, PaymentCurrency: "USDT"},
		{ID: "leg", Symbol: "USDT", Kind: ledger.Purchase, Quantity: d("150"), Price: d("1"), Total: d("150"),
			Time: at, Synthetic: true, OriginID: "01HXYZABCDEF"},
	}

	result := FormatTransactionsOrg("alice", txs)
	assert.Contains(t, result, "* Ledger: alice")
	assert.Contains(t, result, "| 01HXYZAB | 2024-03-15T10:30:45Z | sale | X | 5 | 30 | 150 | crypto USDT |")
	assert.Contains(t, result, "| leg | 2024-03-15T10:30:45Z | purchase* | USDT | 150 | 1 | 150 |  |")

	one := FormatTransactionOrg(txs[1])
	assert.Contains(t, one, "** PURCHASE 150 USDT (leg)")
	assert.Contains(t, one, ":ORIGIN: 01HXYZABCDEF")
	assert.NotContains(t, one, ":PAYMENT:")
}

func TestFormatTotals(t *testing.T) {
	t.Parallel()

	records := []gains.RealizedGain{
		{Symbol: "X", Proceeds: d("150"), CostBasis: d("75"), Gain: d("75"), Time: at},
		{Symbol: "Z", Proceeds: d("80"), CostBasis: d("100"), Gain: d("-20"), Time: at.AddDate(0, 0, 1)},
	}

	total := FormatTotalOrg("alice", gains.Summarize(records))
	assert.Contains(t, total, "| Total | 2 | 1 | 1 | 230.00 | 175.00 | 55.00 | 31.43% |")
	assert.Contains(t, total, "Profitable: 50.00%  Unprofitable: 50.00%")

	assets := FormatAssetTotalsOrg("alice", gains.ByAsset(records))
	assert.Contains(t, assets, "| X | 1 | 1 | 0 | 150.00 | 75.00 | 75.00 | 100.00% |")
	assert.Contains(t, assets, "| Z | 1 | 0 | 1 | 80.00 | 100.00 | -20.00 | -20.00% |")

	periods := FormatPeriodTotalsOrg("alice", gains.Day, gains.ByPeriod(records, gains.Day))
	assert.Contains(t, periods, "* Realized gains by day: alice")
	assert.Contains(t, periods, "| 2024-03-15 | 1 |")
	assert.Contains(t, periods, "| 2024-03-16 | 1 |")
}

func TestFormatCostBasisOrg(t *testing.T) {
	t.Parallel()

	r := costbasis.Report{
		Method: costbasis.FIFO,
		Assets: []costbasis.AssetSummary{{
			Symbol:        "X",
			TotalAcquired: d("20"),
			TotalSold:     d("5"),
			Remaining:     d("15"),
			RealizedGain:  d("100"),
			Sales: []costbasis.SaleResult{{
				TransactionID: "sale-1", Time: at, Quantity: d("5"),
				CostBasisPerUnit: d("10"), Proceeds: d("150"), Gain: d("100"), GainPercent: d("200"),
			}},
			Skipped: []costbasis.SkippedSale{{TransactionID: "sale-2", Time: at, Quantity: d("50"), Available: d("15")}},
		}},
		TotalProceeds:  d("150"),
		TotalCostBasis: d("50"),
		TotalGain:      d("100"),
	}

	result := FormatCostBasisOrg("alice", r)
	assert.Contains(t, result, "* Realized gains (FIFO): alice")
	assert.Contains(t, result, "Proceeds: 150.00  Cost: 50.00  Gain: 100.00")
	assert.Contains(t, result, "** X")
	assert.Contains(t, result, "| 2024-03-15T10:30:45Z | sale-1 | 5 | 10.0000 | 150.00 | 100.00 | 200.00% |")
	assert.Contains(t, result, "| 2024-03-15T10:30:45Z | sale-2 | 50 | skipped |  |  | only 15 held |")
}

func TestFormatHistoryOrg(t *testing.T) {
	t.Parallel()

	points := []tracker.HistoryPoint{
		{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Valuation: portfolio.Valuation{TotalValue: d("20"), TotalCost: d("10"), Unrealized: d("10"), UnrealizedPercent: d("100")}},
	}
	result := FormatHistoryOrg("alice", gains.Month, points)
	assert.Contains(t, result, "* Portfolio history by month: alice")
	assert.Contains(t, result, "| 2024-01-01 | 20.00 | 10.00 | 10.00 | 100.00% |")
}
