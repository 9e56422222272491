package ynab

import (
	"fmt"

	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// YNAB API response envelopes.
type budgetsResponse struct {
	Data struct {
		Budgets []budget `json:"budgets"`
	} `json:"data"`
}

type monthResponse struct {
	Data struct {
		Month struct {
			Month      string     `json:"month"`
			Categories []category `json:"categories"`
		} `json:"month"`
	} `json:"data"`
}

type accountsResponse struct {
	Data struct {
		Accounts []account `json:"accounts"`
	} `json:"data"`
}

type transactionsResponse struct {
	Data struct {
		Transactions []transaction `json:"transactions"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

type budget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type category struct {
	GoalTarget      *int64  `json:"goal_target"`
	GoalTargetMonth *string `json:"goal_target_month"`
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Hidden          bool    `json:"hidden"`
	Deleted         bool    `json:"deleted"`
}

type account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance int64  `json:"balance"`
	Closed  bool   `json:"closed"`
	Deleted bool   `json:"deleted"`
}

type transaction struct {
	CategoryID *string `json:"category_id"`
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	AccountID  string  `json:"account_id"`
	Amount     int64   `json:"amount"`
	Deleted    bool    `json:"deleted"`
}

func (c category) toModel() (model.Category, error) {
	out := model.Category{
		ID:      c.ID,
		Name:    c.Name,
		Hidden:  c.Hidden,
		Deleted: c.Deleted,
	}
	if c.GoalTarget != nil {
		out.GoalTarget = model.Milliunits(*c.GoalTarget)
	}
	if c.GoalTargetMonth != nil && *c.GoalTargetMonth != "" {
		month, err := model.ParseDay(*c.GoalTargetMonth)
		if err != nil {
			return model.Category{}, fmt.Errorf("category %s goal_target_month: %w", c.ID, err)
		}
		out.GoalTargetMonth = &month
	}
	return out, nil
}

func (a account) toModel() model.Account {
	return model.Account{
		ID:      a.ID,
		Name:    a.Name,
		Type:    model.ParseAccountType(a.Type),
		Balance: model.Milliunits(a.Balance),
		Closed:  a.Closed,
		Deleted: a.Deleted,
	}
}

func (t transaction) toModel() (model.Transaction, error) {
	date, err := model.ParseDay(t.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s date: %w", t.ID, err)
	}

	out := model.Transaction{
		ID:        t.ID,
		Date:      date,
		AccountID: t.AccountID,
		Amount:    model.Milliunits(t.Amount),
		Deleted:   t.Deleted,
	}
	if t.CategoryID != nil {
		out.CategoryID = *t.CategoryID
	}
	return out, nil
}
