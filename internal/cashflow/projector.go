// Package cashflow projects how much cash each calendar month needs from the
// goals set on budget categories.
package cashflow

import (
	"fmt"
	"regexp"
	"time"

	"github.com/Veraticus/the-cash-must-flow/internal/currency"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// CreditLagMonths is how long after its target month a credit card purchase
// is paid.
const CreditLagMonths = 2

// recurringPattern matches names carrying a day-of-month marker like "(3)".
var recurringPattern = regexp.MustCompile(`\([0-9]`)

// Projection is the cash flow of one year.
type Projection struct {
	Recurring      []model.Category
	Months         []model.MonthReport
	Year           int
	RecurringTotal model.Milliunits
}

// Projector buckets category goals into calendar months.
type Projector struct {
	now                func() time.Time
	targetAverageDaily model.Milliunits
}

// NewProjector creates a projector targeting the given average daily balance.
func NewProjector(targetAverageDaily model.Milliunits) *Projector {
	return &Projector{
		targetAverageDaily: targetAverageDaily,
		now:                time.Now,
	}
}

// WithClock sets the clock that decides the current year.
func (p *Projector) WithClock(now func() time.Time) *Projector {
	p.now = now
	return p
}

// IsRecurring reports whether a category is a fixed monthly obligation.
func IsRecurring(c *model.Category) bool {
	return c != nil && !c.Deleted && !c.Hidden && recurringPattern.MatchString(c.Name)
}

// Project computes the twelve month reports of the current year.
func (p *Projector) Project(categories []*model.Category) *Projection {
	year := p.now().Year()

	recurring := Recurring(categories)
	projection := &Projection{
		Year:           year,
		Recurring:      derefAll(recurring),
		RecurringTotal: Total(recurring),
		Months:         make([]model.MonthReport, 0, 12),
	}

	for monthIndex := 0; monthIndex < 12; monthIndex++ {
		target := time.Month(monthIndex + 1)

		combined := make([]*model.Category, 0, len(recurring))
		combined = append(combined, recurring...)
		combined = append(combined, CashBucket(categories, target, year)...)
		combined = append(combined, CreditBucket(categories, target, year)...)

		projection.Months = append(projection.Months, p.monthReport(monthIndex, combined))
	}

	return projection
}

func (p *Projector) monthReport(monthIndex int, combined []*model.Category) model.MonthReport {
	cashFlow := Total(combined)

	lines := make([]string, 0, len(combined))
	for _, c := range combined {
		if c == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, currency.Format(c.GoalTarget)))
	}

	return model.MonthReport{
		Month:         monthIndex + 1,
		CashFlow:      cashFlow,
		TargetBalance: cashFlow/2 + p.targetAverageDaily,
		Contributors:  derefAll(combined),
		Lines:         lines,
	}
}

// Recurring selects the visible categories whose names mark a recurrence.
func Recurring(categories []*model.Category) []*model.Category {
	var out []*model.Category
	for _, c := range categories {
		if IsRecurring(c) {
			out = append(out, c)
		}
	}
	return out
}

// CashBucket selects goals paid from cash or checking in the month they
// target.
func CashBucket(categories []*model.Category, month time.Month, year int) []*model.Category {
	var out []*model.Category
	for _, c := range categories {
		if !eligible(c, year) || !c.AccountType.PaysImmediately() {
			continue
		}
		if c.GoalTargetMonth.Month() == month {
			out = append(out, c)
		}
	}
	return out
}

// CreditBucket selects credit card goals whose bill lands in month.
func CreditBucket(categories []*model.Category, month time.Month, year int) []*model.Category {
	var out []*model.Category
	for _, c := range categories {
		if !eligible(c, year) || c.AccountType != model.AccountTypeCreditCard {
			continue
		}
		if PaymentMonth(*c.GoalTargetMonth) == month {
			out = append(out, c)
		}
	}
	return out
}

// PaymentMonth returns the month a credit card goal targeted at goalMonth is
// paid.
func PaymentMonth(goalMonth time.Time) time.Month {
	return model.FirstOfMonth(goalMonth).AddDate(0, CreditLagMonths, 0).Month()
}

// Total sums goal targets, skipping nil entries.
func Total(categories []*model.Category) model.Milliunits {
	targets := make([]model.Milliunits, 0, len(categories))
	for _, c := range categories {
		if c != nil {
			targets = append(targets, c.GoalTarget)
		}
	}
	return model.Sum(targets...)
}

func eligible(c *model.Category, year int) bool {
	return c != nil &&
		!c.Deleted &&
		!c.Hidden &&
		c.HasGoalMonth() &&
		c.GoalTargetMonth.Year() <= year
}

func derefAll(categories []*model.Category) []model.Category {
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}
