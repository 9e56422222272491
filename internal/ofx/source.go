// Package ofx reads OFX/QFX statement downloads as an offline data source.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// BudgetID is the single budget an OFX source exposes.
const BudgetID = "ofx"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Source serves accounts and transactions parsed from statement files.
// OFX carries no budget categories, so month category lookups are empty.
type Source struct {
	accounts     map[string]model.Account
	transactions map[string][]model.Transaction
	seen         map[string]bool
	logger       *slog.Logger
	mu           sync.RWMutex
}

var _ service.DataSource = (*Source)(nil)

// NewSource creates an empty source.
func NewSource() *Source {
	return &Source{
		accounts:     make(map[string]model.Account),
		transactions: make(map[string][]model.Transaction),
		seen:         make(map[string]bool),
		logger:       slog.Default().With("component", "ofx"),
	}
}

// LoadFiles creates a source from the statement files at paths.
func LoadFiles(ctx context.Context, paths ...string) (*Source, error) {
	src := NewSource()
	for _, path := range paths {
		if err := src.loadFile(ctx, path); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func (s *Source) loadFile(ctx context.Context, path string) error {
	f, err := os.Open(path) // #nosec G304 -- user-specified statement file
	if err != nil {
		return fmt.Errorf("failed to open OFX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := s.Load(ctx, f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Load parses one statement download and merges it into the source.
// Transactions already loaded (same account and FITID) are skipped.
func (s *Source) Load(ctx context.Context, reader io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return fmt.Errorf("failed to parse OFX file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var bankStmts, ccStmts, added int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++

		accountType := model.AccountTypeOther
		if stmt.BankAcctFrom.AcctType == ofxgo.AcctTypeChecking {
			accountType = model.AccountTypeChecking
		}
		n, err := s.addStatement(string(stmt.BankAcctFrom.AcctID), accountType, stmt.BalAmt, stmt.BankTranList)
		if err != nil {
			s.logger.Warn("Failed to process bank statement",
				"account", stmt.BankAcctFrom.AcctID,
				"error", err)
			continue
		}
		added += n
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++

		n, err := s.addStatement(string(stmt.CCAcctFrom.AcctID), model.AccountTypeCreditCard, stmt.BalAmt, stmt.BankTranList)
		if err != nil {
			s.logger.Warn("Failed to process credit card statement",
				"account", stmt.CCAcctFrom.AcctID,
				"error", err)
			continue
		}
		added += n
	}

	common.LogInfo(ctx, s.logger, "Parsed OFX file", common.Fields{
		"transactions":    added,
		"bank_statements": bankStmts,
		"cc_statements":   ccStmts,
	})

	return nil
}

// addStatement must be called with s.mu held.
func (s *Source) addStatement(accountID string, accountType model.AccountType, balance ofxgo.Amount, list *ofxgo.TransactionList) (int, error) {
	if accountID == "" {
		return 0, fmt.Errorf("statement has no account id")
	}

	ledger, err := milliunits(balance)
	if err != nil {
		return 0, fmt.Errorf("ledger balance: %w", err)
	}

	s.accounts[accountID] = model.Account{
		ID:      accountID,
		Name:    accountName(accountType, accountID),
		Type:    accountType,
		Balance: ledger,
	}

	if list == nil {
		return 0, nil
	}

	added := 0
	for _, ofxTx := range list.Transactions {
		key := accountID + "/" + string(ofxTx.FiTID)
		if s.seen[key] {
			continue
		}

		amount, err := milliunits(ofxTx.TrnAmt)
		if err != nil {
			return added, fmt.Errorf("transaction %s: %w", ofxTx.FiTID, err)
		}

		s.seen[key] = true
		s.transactions[accountID] = append(s.transactions[accountID], model.Transaction{
			ID:        string(ofxTx.FiTID),
			Date:      model.Day(ofxTx.DtPosted.Time),
			AccountID: accountID,
			Amount:    amount,
		})
		added++
	}

	return added, nil
}

// milliunits converts an exact OFX amount to milliunits, rounding half away
// from zero at the third decimal.
func milliunits(amount ofxgo.Amount) (model.Milliunits, error) {
	d, err := decimal.NewFromString(amount.FloatString(3))
	if err != nil {
		return 0, err
	}
	return model.Milliunits(d.Shift(3).IntPart()), nil
}

// accountName labels an account with its type and last four digits.
func accountName(accountType model.AccountType, accountID string) string {
	suffix := accountID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}

	switch accountType {
	case model.AccountTypeChecking:
		return "Checking ..." + suffix
	case model.AccountTypeCreditCard:
		return "Credit Card ..." + suffix
	default:
		return "Account ..." + suffix
	}
}

// ListBudgets returns the single synthetic budget.
func (s *Source) ListBudgets(_ context.Context) ([]model.Budget, error) {
	return []model.Budget{{ID: BudgetID, Name: "OFX statements"}}, nil
}

// GetMonthCategories returns no categories.
func (s *Source) GetMonthCategories(_ context.Context, budgetID string, _ time.Time) ([]model.Category, error) {
	if err := checkBudget(budgetID); err != nil {
		return nil, err
	}
	return []model.Category{}, nil
}

// GetAccounts returns the loaded accounts ordered by ID.
func (s *Source) GetAccounts(_ context.Context, budgetID string) ([]model.Account, error) {
	if err := checkBudget(budgetID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// GetTransactions returns every loaded transaction ordered by date.
func (s *Source) GetTransactions(_ context.Context, budgetID string) ([]model.Transaction, error) {
	if err := checkBudget(budgetID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []model.Transaction
	for _, txs := range s.transactions {
		all = append(all, txs...)
	}
	sortTransactions(all)
	return all, nil
}

// GetTransactionsByAccount returns an account's transactions within the
// optional [start, end] bounds, ordered by date.
func (s *Source) GetTransactionsByAccount(_ context.Context, budgetID, accountID string, start, end *time.Time) ([]model.Transaction, error) {
	if err := checkBudget(budgetID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, &common.DataSourceError{
			Op:  "get account transactions",
			Err: fmt.Errorf("%w: account %s", common.ErrNotFound, accountID),
		}
	}

	var out []model.Transaction
	for _, tx := range s.transactions[accountID] {
		if start != nil && tx.Date.Before(model.Day(*start)) {
			continue
		}
		if end != nil && tx.Date.After(model.Day(*end)) {
			continue
		}
		out = append(out, tx)
	}
	sortTransactions(out)
	return out, nil
}

func checkBudget(budgetID string) error {
	if budgetID != "" && budgetID != BudgetID {
		return &common.DataSourceError{
			Op:  "get budget",
			Err: fmt.Errorf("%w: budget %s", common.ErrNotFound, budgetID),
		}
	}
	return nil
}

func sortTransactions(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})
}
