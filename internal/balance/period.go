// Package balance computes average daily balances over credit card and bank
// statement periods.
package balance

import (
	"fmt"
	"time"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// Period is a statement period. Both ends are inclusive calendar days.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a period from two days, rejecting one that ends before it
// starts.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: model.Day(start), End: model.Day(end)}
	if p.End.Before(p.Start) {
		return Period{}, &common.InvalidWindowError{Start: p.Start, End: p.End}
	}
	return p, nil
}

// StatementPeriod returns the statement period containing now for a
// statement that closes on cutoffDay of every month. Cutoff days beyond the
// end of a short month close on its last day.
func StatementPeriod(now time.Time, cutoffDay int) (Period, error) {
	if cutoffDay < 1 || cutoffDay > 31 {
		return Period{}, fmt.Errorf("%w: statement cutoff day %d must be between 1 and 31", common.ErrInvalidConfig, cutoffDay)
	}

	today := model.Day(now)
	thisCutoff := cutoffIn(today.Year(), today.Month(), cutoffDay)

	if today.After(thisCutoff) {
		next := model.FirstOfMonth(today).AddDate(0, 1, 0)
		return Period{
			Start: thisCutoff.AddDate(0, 0, 1),
			End:   cutoffIn(next.Year(), next.Month(), cutoffDay),
		}, nil
	}

	prev := model.FirstOfMonth(today).AddDate(0, -1, 0)
	return Period{
		Start: cutoffIn(prev.Year(), prev.Month(), cutoffDay).AddDate(0, 0, 1),
		End:   thisCutoff,
	}, nil
}

func cutoffIn(year int, month time.Month, cutoffDay int) time.Time {
	last := model.Date(year, month+1, 0).Day()
	if cutoffDay > last {
		cutoffDay = last
	}
	return model.Date(year, month, cutoffDay)
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	return model.DaysBetween(p.Start, p.End) + 1
}

// Contains reports whether t falls on a day inside the period.
func (p Period) Contains(t time.Time) bool {
	d := model.Day(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Through returns the part of the period up to and including today.
func (p Period) Through(today time.Time) Period {
	end := model.Day(today)
	if end.After(p.End) {
		end = p.End
	}
	return Period{Start: p.Start, End: end}
}

// String formats the period as "2024-01-04 → 2024-02-03".
func (p Period) String() string {
	return fmt.Sprintf("%s → %s", model.DayKey(p.Start), model.DayKey(p.End))
}
