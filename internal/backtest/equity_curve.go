package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"time"
)

// EquityPoint is one equity snapshot. Balance here is total equity (cash
// plus unrealized PnL); Drawdown is the fraction below the running peak,
// in [0,1].
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Balance  float64   `json:"balance"`
	Drawdown float64   `json:"drawdown"`
}

// EquityCurve is the append-only per-bar equity sequence, one point per
// processed bar in bar order.
type EquityCurve []EquityPoint

// Returns computes period-over-period fractional returns.
func (c EquityCurve) Returns() []float64 {
	if len(c) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(c)-1)
	for i := 1; i < len(c); i++ {
		prev := c[i-1].Balance
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (c[i].Balance-prev)/prev)
	}
	return returns
}

// MaxDrawdown returns the deepest drawdown as a fraction.
func (c EquityCurve) MaxDrawdown() float64 {
	maxDD := 0.0
	for _, p := range c {
		if p.Drawdown > maxDD {
			maxDD = p.Drawdown
		}
	}
	return maxDD
}

// MaxDrawdownDuration returns the longest consecutive run of bars spent
// below the running equity peak.
func (c EquityCurve) MaxDrawdownDuration() int {
	longest, current := 0, 0
	for _, p := range c {
		if p.Drawdown > 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

// MonthlyReturns groups points by calendar month and returns the
// first-to-last percentage change per month, keyed "2006-01".
func (c EquityCurve) MonthlyReturns() map[string]float64 {
	type span struct {
		first, last float64
	}
	months := make(map[string]*span)
	for _, p := range c {
		key := p.Date.Format("2006-01")
		if m, ok := months[key]; ok {
			m.last = p.Balance
		} else {
			months[key] = &span{first: p.Balance, last: p.Balance}
		}
	}

	result := make(map[string]float64, len(months))
	for key, m := range months {
		if m.first == 0 {
			result[key] = 0
			continue
		}
		result[key] = (m.last - m.first) / m.first * 100
	}
	return result
}

// Volatility returns the standard deviation of period returns.
func (c EquityCurve) Volatility() float64 {
	return stdDev(c.Returns())
}

// DownsideDeviation returns the standard deviation computed over negative
// period returns only; 0 when there are none.
func (c EquityCurve) DownsideDeviation() float64 {
	var negative []float64
	for _, r := range c.Returns() {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	return stdDev(negative)
}

// WriteCSV writes the curve as date,balance,drawdown rows.
func (c EquityCurve) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "balance", "drawdown"}); err != nil {
		return err
	}
	for _, p := range c {
		record := []string{
			p.Date.Format(time.RFC3339),
			fmt.Sprintf("%.2f", p.Balance),
			fmt.Sprintf("%.6f", p.Drawdown),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// sortedMonthKeys returns month keys in chronological order for stable
// report output.
func sortedMonthKeys(monthly map[string]float64) []string {
	keys := make([]string, 0, len(monthly))
	for k := range monthly {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
