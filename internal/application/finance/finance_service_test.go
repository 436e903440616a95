package finance

import (
	"context"
	"testing"

	"github.com/erp/pos/internal/domain/finance"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Save(ctx context.Context, entry *finance.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.JournalEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) FindByReference(ctx context.Context, id uuid.UUID) ([]finance.JournalEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]finance.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) AccountTotals(ctx context.Context) ([]finance.AccountBalance, error) {
	args := m.Called(ctx)
	return args.Get(0).([]finance.AccountBalance), args.Error(1)
}

func TestFinanceService_RecordPayrollPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("posts salaries against cash", func(t *testing.T) {
		repo := new(MockJournalRepository)
		repo.On("Save", ctx, mock.MatchedBy(func(e *finance.JournalEntry) bool {
			return e.ReferenceType == finance.ReferenceTypePayroll && len(e.Lines) == 2
		})).Return(nil)
		svc := NewFinanceService(repo, nil)

		resp, err := svc.RecordPayrollPayment(ctx, RecordPayrollPaymentRequest{
			EmployeeName: "Jo Park",
			Amount:       decimal.NewFromInt(1200),
			PeriodLabel:  "2026-09",
		}, shared.Actor{UserID: "mgr"})

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(1200)))
		assert.Equal(t, "Salary, Jo Park (2026-09)", resp.Description)
		assert.Equal(t, string(finance.AccountSalariesExpense), resp.Lines[0].Account)
		assert.Equal(t, string(finance.AccountCash), resp.Lines[1].Account)
		repo.AssertExpectations(t)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := new(MockJournalRepository)
		svc := NewFinanceService(repo, nil)

		_, err := svc.RecordPayrollPayment(ctx, RecordPayrollPaymentRequest{EmployeeName: "Jo", Amount: decimal.Zero}, shared.Actor{})

		assert.ErrorIs(t, err, shared.ErrValidationFailed)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestFinanceService_TrialBalance(t *testing.T) {
	ctx := context.Background()
	repo := new(MockJournalRepository)
	repo.On("AccountTotals", ctx).Return([]finance.AccountBalance{
		{Account: finance.AccountSalesRevenue, Debit: decimal.Zero, Credit: decimal.NewFromInt(50)},
		{Account: finance.AccountCash, Debit: decimal.NewFromInt(50), Credit: decimal.Zero},
	}, nil)
	svc := NewFinanceService(repo, nil)

	tb, err := svc.TrialBalance(ctx)

	require.NoError(t, err)
	assert.Equal(t, finance.TrialBalanceStatusBalanced, tb.Status)
	require.Len(t, tb.Accounts, 2)
	assert.Equal(t, finance.AccountCash, tb.Accounts[0].Account)
	assert.Equal(t, "Cash", tb.Accounts[0].AccountName)
}
