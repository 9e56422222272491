// Package join associates budget categories with the kind of account their
// spending comes from.
package join

import (
	"sort"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// SortByDate returns a copy of transactions ordered by date ascending.
// Transactions on the same date keep their relative order.
func SortByDate(transactions []model.Transaction) []model.Transaction {
	sorted := make([]model.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// AccountTypes returns copies of categories tagged with the account type of
// the chronologically last transaction referencing each one. Categories no
// transaction references keep an empty account type. Nil entries stay nil.
func AccountTypes(categories []*model.Category, accounts []model.Account, transactions []model.Transaction) ([]*model.Category, error) {
	accountsByID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		accountsByID[a.ID] = a
	}

	lastByCategory := make(map[string]model.Transaction)
	for _, tx := range SortByDate(transactions) {
		if tx.CategoryID == "" {
			continue
		}
		lastByCategory[tx.CategoryID] = tx
	}

	joined := make([]*model.Category, len(categories))
	for i, category := range categories {
		if category == nil {
			continue
		}

		tagged := *category
		tagged.AccountType = ""

		if tx, ok := lastByCategory[category.ID]; ok {
			account, found := accountsByID[tx.AccountID]
			if !found {
				return nil, &common.ReferentialIntegrityError{
					Entity: "transaction",
					ID:     tx.ID,
					Ref:    "account",
					RefID:  tx.AccountID,
				}
			}
			tagged.AccountType = account.Type
		}

		joined[i] = &tagged
	}

	return joined, nil
}

// Pointers adapts a fetched category slice for AccountTypes.
func Pointers(categories []model.Category) []*model.Category {
	ptrs := make([]*model.Category, len(categories))
	for i := range categories {
		ptrs[i] = &categories[i]
	}
	return ptrs
}
