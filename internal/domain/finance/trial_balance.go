package finance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TrialBalanceStatus represents the result status of a trial balance check
type TrialBalanceStatus string

const (
	TrialBalanceStatusBalanced   TrialBalanceStatus = "BALANCED"
	TrialBalanceStatusUnbalanced TrialBalanceStatus = "UNBALANCED"
)

// AccountBalance is the total activity posted to one account
type AccountBalance struct {
	Account     Account         `json:"account"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalance lists every account with activity and the grand totals
type TrialBalance struct {
	Accounts    []AccountBalance   `json:"accounts"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	Status      TrialBalanceStatus `json:"status"`
}

// BuildTrialBalance folds per-account totals into a trial balance
func BuildTrialBalance(rows []AccountBalance) *TrialBalance {
	tb := &TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, row := range rows {
		row.AccountName = row.Account.Name()
		row.Balance = row.Debit.Sub(row.Credit)
		tb.Accounts = append(tb.Accounts, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	sort.Slice(tb.Accounts, func(i, j int) bool { return tb.Accounts[i].Account < tb.Accounts[j].Account })
	tb.Status = TrialBalanceStatusUnbalanced
	if tb.TotalDebit.Equal(tb.TotalCredit) {
		tb.Status = TrialBalanceStatusBalanced
	}
	return tb
}
