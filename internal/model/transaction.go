package model

import "time"

// Transaction is a single posted transaction on a budget account.
type Transaction struct {
	Date       time.Time
	ID         string
	AccountID  string
	CategoryID string // empty when uncategorized
	Amount     Milliunits
	Deleted    bool
}

// DayKey returns the ISO date the transaction is bucketed under.
func (t *Transaction) DayKey() string {
	return DayKey(t.Date)
}
