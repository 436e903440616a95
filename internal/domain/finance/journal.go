package finance

import (
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a chart-of-accounts code
type Account string

const (
	AccountCash            Account = "1000"
	AccountInventory       Account = "1200"
	AccountPayable         Account = "2000"
	AccountSalesRevenue    Account = "4000"
	AccountCostOfGoodsSold Account = "5000"
	AccountSalariesExpense Account = "6100"
)

// Name returns the display name of the account
func (a Account) Name() string {
	switch a {
	case AccountCash:
		return "Cash"
	case AccountInventory:
		return "Inventory"
	case AccountPayable:
		return "Accounts Payable"
	case AccountSalesRevenue:
		return "Sales Revenue"
	case AccountCostOfGoodsSold:
		return "Cost of Goods Sold"
	case AccountSalariesExpense:
		return "Salaries Expense"
	}
	return string(a)
}

// IsValid checks if the account is in the chart of accounts
func (a Account) IsValid() bool {
	switch a {
	case AccountCash, AccountInventory, AccountPayable, AccountSalesRevenue, AccountCostOfGoodsSold, AccountSalariesExpense:
		return true
	}
	return false
}

// ReferenceType names the business document that produced a journal entry
type ReferenceType string

const (
	ReferenceTypeSale    ReferenceType = "SALE"
	ReferenceTypeRefund  ReferenceType = "REFUND"
	ReferenceTypeGRN     ReferenceType = "GRN"
	ReferenceTypePayroll ReferenceType = "PAYROLL"
)

// JournalLine is one side of a posting. Exactly one of Debit and Credit is
// positive.
type JournalLine struct {
	Account Account         `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// Debit builds a debit line
func Debit(account Account, amount decimal.Decimal) JournalLine {
	return JournalLine{Account: account, Debit: amount, Credit: decimal.Zero}
}

// Credit builds a credit line
func Credit(account Account, amount decimal.Decimal) JournalLine {
	return JournalLine{Account: account, Debit: decimal.Zero, Credit: amount}
}

// JournalEntry is a balanced double-entry posting
type JournalEntry struct {
	ID            uuid.UUID
	EntryDate     time.Time
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
	Description   string
	Lines         []JournalLine
	CreatedBy     *string
	CreatedAt     time.Time
}

// NewJournalEntry validates and creates an entry. Lines with a zero amount
// are dropped; what remains must balance and be non-empty.
func NewJournalEntry(date time.Time, refType ReferenceType, refID uuid.UUID, description string, actor shared.Actor, lines ...JournalLine) (*JournalEntry, error) {
	kept := make([]JournalLine, 0, len(lines))
	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range lines {
		if !line.Account.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown account %s", line.Account)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeUnbalancedEntry, "Journal amounts cannot be negative")
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeUnbalancedEntry, "A journal line must be either a debit or a credit")
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			continue
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return nil, shared.NewDomainError(shared.CodeUnbalancedEntry, "A journal entry needs at least one non-zero line")
	}
	if !debits.Equal(credits) {
		return nil, shared.NewDomainErrorf(shared.CodeUnbalancedEntry,
			"Journal entry is unbalanced: debits %s, credits %s", debits.StringFixed(2), credits.StringFixed(2))
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &JournalEntry{
		ID:            uuid.New(),
		EntryDate:     date,
		ReferenceType: refType,
		ReferenceID:   refID,
		Description:   strings.TrimSpace(description),
		Lines:         kept,
		CreatedBy:     actor.UserIDPtr(),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Total returns the sum of the debit side
func (e *JournalEntry) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Debit)
	}
	return total
}
