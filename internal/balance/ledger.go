package balance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// LedgerDay is one distinct transaction date and the run of days its
// closing balance holds for.
type LedgerDay struct {
	Date     time.Time
	Net      model.Milliunits
	Running  model.Milliunits
	Gap      int   // days until the next transaction date
	Weighted int64 // Running × Gap
}

// Ledger is the sparse view of an account: one entry per transaction date
// instead of one per calendar day.
type Ledger struct {
	Through time.Time // last day the final entry is held for
	Days    []LedgerDay
}

// TransactionDays builds a ledger from transactions, carrying the final
// balance through today. opening is the balance before the first entry.
func TransactionDays(transactions []model.Transaction, opening model.Milliunits, today time.Time) (*Ledger, error) {
	if len(transactions) == 0 {
		return nil, &common.DivisionByZeroError{What: "transaction-day balance"}
	}

	net := NetChangeByDay(transactions)
	dates := make([]time.Time, 0, len(net))
	for key := range net {
		d, err := model.ParseDay(key)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	through := model.Day(today)
	last := dates[len(dates)-1]
	if through.Before(last) {
		return nil, &common.InvalidWindowError{Start: last, End: through}
	}

	ledger := &Ledger{
		Through: through,
		Days:    make([]LedgerDay, len(dates)),
	}

	running := opening
	for i, d := range dates {
		next := through.AddDate(0, 0, 1)
		if i+1 < len(dates) {
			next = dates[i+1]
		}

		running += net[model.DayKey(d)]
		gap := model.DaysBetween(d, next)

		ledger.Days[i] = LedgerDay{
			Date:     d,
			Net:      net[model.DayKey(d)],
			Running:  running,
			Gap:      gap,
			Weighted: int64(running) * int64(gap),
		}
	}

	return ledger, nil
}

// TotalDays is the number of days the ledger covers.
func (l *Ledger) TotalDays() int {
	total := 0
	for _, d := range l.Days {
		total += d.Gap
	}
	return total
}

// Average returns the weighted average balance over the ledger's days.
func (l *Ledger) Average() (model.Milliunits, error) {
	days := l.TotalDays()
	if days == 0 {
		return 0, &common.DivisionByZeroError{What: "transaction-day balance"}
	}

	var weighted int64
	for _, d := range l.Days {
		weighted += d.Weighted
	}

	avg := decimal.NewFromInt(weighted).Div(decimal.NewFromInt(int64(days)))
	return model.Milliunits(avg.Round(0).IntPart()), nil
}

// Project returns a copy of the ledger whose final balance is held through
// periodEnd, assuming no further transactions.
func (l *Ledger) Project(periodEnd time.Time) (*Ledger, error) {
	if len(l.Days) == 0 {
		return nil, &common.DivisionByZeroError{What: "transaction-day balance"}
	}

	end := model.Day(periodEnd)
	lastIdx := len(l.Days) - 1
	last := l.Days[lastIdx]
	if end.Before(last.Date) {
		return nil, &common.InvalidWindowError{Start: last.Date, End: end}
	}

	projected := &Ledger{
		Through: end,
		Days:    make([]LedgerDay, len(l.Days)),
	}
	copy(projected.Days, l.Days)

	last.Gap = model.DaysBetween(last.Date, end) + 1
	last.Weighted = int64(last.Running) * int64(last.Gap)
	projected.Days[lastIdx] = last

	return projected, nil
}

// InPeriod keeps transactions dated inside the period, up to today.
func InPeriod(transactions []model.Transaction, p Period, today time.Time) []model.Transaction {
	window := p.Through(today)

	var out []model.Transaction
	for _, tx := range transactions {
		if window.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}
