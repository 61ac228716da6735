package backtest

import (
	"fmt"
	"io"
	"strings"
)

// Reporter renders a human-readable run summary.
type Reporter struct {
	w io.Writer
}

// NewReporter writes reports to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// WriteReport prints the run summary, trade statistics, risk ratios and
// monthly returns.
func (r *Reporter) WriteReport(m Metrics) error {
	var b strings.Builder

	line := strings.Repeat("=", 60)
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Backtest Report: %s on %s\n", m.StrategyName, m.Symbol)
	fmt.Fprintf(&b, "Period: %s to %s\n", m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02"))
	fmt.Fprintln(&b, line)

	fmt.Fprintf(&b, "Initial Balance:      %14.2f\n", m.InitialBalance)
	fmt.Fprintf(&b, "Final Balance:        %14.2f\n", m.FinalBalance)
	fmt.Fprintf(&b, "Total Return:         %13.2f%%\n", m.TotalReturnPct)
	fmt.Fprintf(&b, "Annualized Return:    %13.2f%%\n", m.AnnualizedReturnPct)
	fmt.Fprintf(&b, "Max Drawdown:         %13.2f%%\n", m.MaxDrawdownPct)
	fmt.Fprintf(&b, "Max Drawdown Length:  %11d bars\n", m.MaxDrawdownDuration)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Total Trades:         %11d\n", m.TotalTrades)
	fmt.Fprintf(&b, "Winning / Losing:     %8d / %d\n", m.WinningTrades, m.LosingTrades)
	fmt.Fprintf(&b, "Win Rate:             %13.1f%%\n", m.WinRate*100)
	fmt.Fprintf(&b, "Avg Win / Avg Loss:   %10.2f / %.2f\n", m.AvgWin, m.AvgLoss)
	fmt.Fprintf(&b, "Largest Win / Loss:   %10.2f / %.2f\n", m.LargestWin, m.LargestLoss)
	fmt.Fprintf(&b, "Total Commission:     %14.2f\n", m.TotalCommission)
	fmt.Fprintf(&b, "Avg Trade Duration:   %14s\n", m.AvgTradeDuration)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Sharpe Ratio:         %14.3f\n", m.SharpeRatio)
	fmt.Fprintf(&b, "Sortino Ratio:        %14.3f\n", m.SortinoRatio)
	fmt.Fprintf(&b, "Calmar Ratio:         %14.3f\n", m.CalmarRatio)
	fmt.Fprintf(&b, "Profit Factor:        %14.3f\n", m.ProfitFactor)
	fmt.Fprintf(&b, "Kelly Percentage:     %13.2f%%\n", m.KellyPct)
	fmt.Fprintf(&b, "Expectancy:           %14.2f\n", m.Expectancy)

	if len(m.MonthlyReturns) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Monthly Returns:")
		for _, month := range sortedMonthKeys(m.MonthlyReturns) {
			fmt.Fprintf(&b, "  %s  %8.2f%%\n", month, m.MonthlyReturns[month])
		}
	}
	fmt.Fprintln(&b, line)

	_, err := io.WriteString(r.w, b.String())
	return err
}
