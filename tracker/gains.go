package tracker

import (
	"context"
	"time"

	"github.com/rustyeddy/holdings/costbasis"
	"github.com/rustyeddy/holdings/gains"
	"github.com/rustyeddy/holdings/ledger"
	"github.com/rustyeddy/holdings/portfolio"
	"github.com/rustyeddy/holdings/store"
)

// GetRealizedGains returns owner's gain records selected by f, oldest first.
func (t *Tracker) GetRealizedGains(ctx context.Context, owner string, f gains.Filter) ([]gains.RealizedGain, error) {
	f.Owner = owner
	var out []gains.RealizedGain
	err := t.read(ctx, "get realized gains", func(u store.Unit) error {
		var err error
		out, err = u.ListGains(ctx, f)
		return err
	})
	return out, err
}

func (t *Tracker) GetRealizedGainTotal(ctx context.Context, owner string, f gains.Filter) (gains.Total, error) {
	records, err := t.GetRealizedGains(ctx, owner, f)
	if err != nil {
		return gains.Total{}, err
	}
	return gains.Summarize(records), nil
}

func (t *Tracker) GetRealizedGainsByAsset(ctx context.Context, owner string, f gains.Filter) ([]gains.AssetTotal, error) {
	records, err := t.GetRealizedGains(ctx, owner, f)
	if err != nil {
		return nil, err
	}
	return gains.ByAsset(records), nil
}

func (t *Tracker) GetRealizedGainsByPeriod(ctx context.Context, owner string, b gains.Bucket, f gains.Filter) ([]gains.PeriodTotal, error) {
	records, err := t.GetRealizedGains(ctx, owner, f)
	if err != nil {
		return nil, err
	}
	return gains.ByPeriod(records, b), nil
}

// GetRealizedGainsHistorical matches every sale of owner against its lots
// under m. It reads the ledger only and can disagree with the stored gain
// records, which always use the replay's average cost.
func (t *Tracker) GetRealizedGainsHistorical(ctx context.Context, owner string, m costbasis.Method) (costbasis.Report, error) {
	txs, err := t.ListTransactions(ctx, ledger.Filter{Owner: owner, IncludeSynthetic: true})
	if err != nil {
		return costbasis.Report{}, err
	}
	return t.calc.Calculate(txs, m)
}

// HistoryPoint is the approximate value of a portfolio at the end of a bucket.
type HistoryPoint struct {
	Start     time.Time           `json:"start"`
	End       time.Time           `json:"end"`
	Valuation portfolio.Valuation `json:"valuation"`
}

// GetPortfolioHistory replays owner's history up to the end of each bucket,
// from the bucket of the first event through the current one. Every point is
// valued at current prices, not the prices of the time.
func (t *Tracker) GetPortfolioHistory(ctx context.Context, owner string, b gains.Bucket) ([]HistoryPoint, error) {
	txs, err := t.ListTransactions(ctx, ledger.Filter{Owner: owner})
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}

	now := t.now()
	var points []HistoryPoint
	for start := b.Truncate(txs[0].Time); !start.After(now); start = b.Next(start) {
		end := b.Next(start)
		res := t.recon.ReplayUntil(owner, txs, end.Add(-time.Nanosecond))

		p := portfolio.Portfolio{Owner: owner, Holdings: res.Holdings, UpdatedAt: end}
		v, err := portfolio.Value(ctx, p, t.prices, t.stable, t.logger)
		if err != nil {
			return nil, err
		}
		points = append(points, HistoryPoint{Start: start, End: end, Valuation: v})
	}
	return points, nil
}
