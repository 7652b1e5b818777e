package gains

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Total aggregates a set of gain records. Break-even records count towards
// Count only.
type Total struct {
	Count               int             `json:"count"`
	Profitable          int             `json:"profitable"`
	Unprofitable        int             `json:"unprofitable"`
	ProfitablePercent   decimal.Decimal `json:"profitable_percent"`
	UnprofitablePercent decimal.Decimal `json:"unprofitable_percent"`
	Proceeds            decimal.Decimal `json:"proceeds"`
	CostBasis           decimal.Decimal `json:"cost_basis"`
	Gain                decimal.Decimal `json:"gain"`
	GainPercent         decimal.Decimal `json:"gain_percent"`
}

func (t *Total) add(g RealizedGain) {
	t.Count++
	switch {
	case g.Gain.IsPositive():
		t.Profitable++
	case g.Gain.IsNegative():
		t.Unprofitable++
	}
	t.Proceeds = t.Proceeds.Add(g.Proceeds)
	t.CostBasis = t.CostBasis.Add(g.CostBasis)
	t.Gain = t.Gain.Add(g.Gain)
}

func (t *Total) finish() {
	if t.Count > 0 {
		n := decimal.NewFromInt(int64(t.Count))
		t.ProfitablePercent = decimal.NewFromInt(int64(t.Profitable)).Div(n).Mul(hundred)
		t.UnprofitablePercent = decimal.NewFromInt(int64(t.Unprofitable)).Div(n).Mul(hundred)
	}
	if !t.CostBasis.IsZero() {
		t.GainPercent = t.Gain.Div(t.CostBasis).Mul(hundred)
	}
}

// Summarize returns the grand total over records.
func Summarize(records []RealizedGain) Total {
	var t Total
	for _, g := range records {
		t.add(g)
	}
	t.finish()
	return t
}

// AssetTotal is the total for one asset.
type AssetTotal struct {
	Symbol string `json:"symbol"`
	Total
}

// ByAsset groups records by asset symbol, sorted by symbol.
func ByAsset(records []RealizedGain) []AssetTotal {
	idx := map[string]int{}
	var out []AssetTotal
	for _, g := range records {
		i, ok := idx[g.Symbol]
		if !ok {
			i = len(out)
			idx[g.Symbol] = i
			out = append(out, AssetTotal{Symbol: g.Symbol})
		}
		out[i].add(g)
	}
	for i := range out {
		out[i].finish()
	}
	slices.SortFunc(out, func(a, b AssetTotal) int {
		return strings.Compare(a.Symbol, b.Symbol)
	})
	return out
}

// Bucket is a reporting period.
type Bucket int

const (
	Day Bucket = iota + 1
	Week
	Month
	Year
)

func (b Bucket) String() string {
	switch b {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return "unknown"
	}
}

// ParseBucket parses day, week, month or year.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	case "year", "yearly":
		return Year, nil
	default:
		return 0, fmt.Errorf("unknown period bucket: %q", s)
	}
}

// Truncate returns the start of the bucket containing t, in UTC. Weeks start
// on Monday.
func (b Bucket) Truncate(t time.Time) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch b {
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the bucket following the one starting at start.
func (b Bucket) Next(start time.Time) time.Time {
	switch b {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// PeriodTotal is the total for one bucket.
type PeriodTotal struct {
	Start  time.Time `json:"start"`
	Bucket Bucket    `json:"-"`
	Total
}

// ByPeriod groups records into buckets, oldest first. Buckets without
// records are omitted.
func ByPeriod(records []RealizedGain, b Bucket) []PeriodTotal {
	idx := map[time.Time]int{}
	var out []PeriodTotal
	for _, g := range records {
		start := b.Truncate(g.Time)
		i, ok := idx[start]
		if !ok {
			i = len(out)
			idx[start] = i
			out = append(out, PeriodTotal{Start: start, Bucket: b})
		}
		out[i].add(g)
	}
	for i := range out {
		out[i].finish()
	}
	slices.SortFunc(out, func(x, y PeriodTotal) int {
		return x.Start.Compare(y.Start)
	})
	return out
}
