package model

// AccountType classifies a budget account for cash-flow timing.
type AccountType string

const (
	// AccountTypeChecking is a checking account.
	AccountTypeChecking AccountType = "checking"
	// AccountTypeCash is a cash account.
	AccountTypeCash AccountType = "cash"
	// AccountTypeCreditCard is a credit card, paid with a billing lag.
	AccountTypeCreditCard AccountType = "creditCard"
	// AccountTypeOther covers every other account kind (savings, loans, tracking).
	AccountTypeOther AccountType = "other"
)

// ParseAccountType maps a raw account type onto the types the reports use.
func ParseAccountType(raw string) AccountType {
	switch AccountType(raw) {
	case AccountTypeChecking, AccountTypeCash, AccountTypeCreditCard:
		return AccountType(raw)
	default:
		return AccountTypeOther
	}
}

// PaysImmediately reports whether spending from this account type leaves
// the budget in the month it is targeted. An absent type counts as cash.
func (t AccountType) PaysImmediately() bool {
	return t == "" || t == AccountTypeChecking || t == AccountTypeCash
}

// String returns the account type, or "none" when absent.
func (t AccountType) String() string {
	if t == "" {
		return "none"
	}
	return string(t)
}

// Account is a budget account snapshot.
type Account struct {
	ID      string
	Name    string
	Type    AccountType
	Balance Milliunits
	Closed  bool
	Deleted bool
}

// Budget identifies a budget.
type Budget struct {
	ID   string
	Name string
}
