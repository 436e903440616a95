package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/finance"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FinanceService records payroll payments and reads the journal. Sales,
// refunds and GRN approvals post their own entries inside their workflow
// transactions.
type FinanceService struct {
	journalRepo finance.JournalRepository
	logger      *zap.Logger
}

// NewFinanceService creates a new FinanceService
func NewFinanceService(journalRepo finance.JournalRepository, logger *zap.Logger) *FinanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceService{journalRepo: journalRepo, logger: logger}
}

// RecordPayrollPayment posts Dr Salaries Expense / Cr Cash
func (s *FinanceService) RecordPayrollPayment(ctx context.Context, req RecordPayrollPaymentRequest, actor shared.Actor) (*JournalEntryResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Payroll amount must be positive")
	}
	date := time.Time{}
	if req.PaymentDate != nil {
		date = *req.PaymentDate
	}
	description := "Salary, " + strings.TrimSpace(req.EmployeeName)
	if req.PeriodLabel != "" {
		description += " (" + req.PeriodLabel + ")"
	}

	entry, err := finance.NewJournalEntry(date, finance.ReferenceTypePayroll, uuid.New(), description, actor,
		finance.Debit(finance.AccountSalariesExpense, req.Amount),
		finance.Credit(finance.AccountCash, req.Amount),
	)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("save payroll entry: %w", err)
	}
	s.logger.Info("payroll payment recorded",
		zap.String("entry_id", entry.ID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
	)
	resp := ToJournalEntryResponse(entry)
	return &resp, nil
}

// ListJournal lists journal entries, newest first
func (s *FinanceService) ListJournal(ctx context.Context, filter JournalListFilter) ([]JournalEntryResponse, int64, error) {
	f := shared.DefaultFilter()
	f.OrderBy = "entry_date"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.ReferenceType != "" {
		f.Filters["reference_type"] = filter.ReferenceType
	}
	if filter.ReferenceID != nil {
		f.Filters["reference_id"] = *filter.ReferenceID
	}
	entries, err := s.journalRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.journalRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToJournalEntryResponse(&entries[i])
	}
	return out, total, nil
}

// TrialBalance sums every account and checks that debits equal credits
func (s *FinanceService) TrialBalance(ctx context.Context) (*finance.TrialBalance, error) {
	rows, err := s.journalRepo.AccountTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}
	tb := finance.BuildTrialBalance(rows)
	if tb.Status != finance.TrialBalanceStatusBalanced {
		s.logger.Error("trial balance does not balance",
			zap.String("total_debit", tb.TotalDebit.StringFixed(2)),
			zap.String("total_credit", tb.TotalCredit.StringFixed(2)),
		)
	}
	return tb, nil
}
