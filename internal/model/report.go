package model

// MonthReport is the projected cash flow for one calendar month.
type MonthReport struct {
	Lines         []string
	Contributors  []Category
	Month         int // 1 = January
	CashFlow      Milliunits
	TargetBalance Milliunits
}
