package model

import "time"

// Category is a budget category as reported for a single budget month.
type Category struct {
	GoalTargetMonth *time.Time
	ID              string
	Name            string
	// AccountType is derived from the account of the category's last
	// transaction. The zero value means no transaction references it.
	AccountType AccountType
	GoalTarget  Milliunits
	Hidden      bool
	Deleted     bool
}

// HasGoalMonth reports whether the category's goal is scheduled for a month.
func (c *Category) HasGoalMonth() bool {
	return c.GoalTargetMonth != nil && !c.GoalTargetMonth.IsZero()
}
