package trade

import (
	"context"
	"fmt"
	"time"

	appinventory "github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/finance"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/trade"
	"github.com/google/uuid"
)

// postJournal writes a journal entry inside the caller's transaction.
// Documents whose amounts are all zero post nothing.
func postJournal(
	ctx context.Context,
	repos appinventory.TransactionalRepositories,
	date time.Time,
	refType finance.ReferenceType,
	refID uuid.UUID,
	description string,
	actor shared.Actor,
	lines ...finance.JournalLine,
) error {
	nonZero := false
	for _, line := range lines {
		if !line.Debit.IsZero() || !line.Credit.IsZero() {
			nonZero = true
			break
		}
	}
	if !nonZero {
		return nil
	}
	entry, err := finance.NewJournalEntry(date, refType, refID, description, actor, lines...)
	if err != nil {
		return err
	}
	if err := repos.JournalRepo().Save(ctx, entry); err != nil {
		return fmt.Errorf("save %s journal entry: %w", refType, err)
	}
	return nil
}

// Goods received on credit: Dr Inventory / Cr Accounts Payable
func postGRN(ctx context.Context, repos appinventory.TransactionalRepositories, grn *trade.GoodsReceivedNote, actor shared.Actor) error {
	return postJournal(ctx, repos, grn.ReceivedDate, finance.ReferenceTypeGRN, grn.ID,
		fmt.Sprintf("GRN %s from %s", grn.ReferenceNo, grn.SupplierName), actor,
		finance.Debit(finance.AccountInventory, grn.TotalValue),
		finance.Credit(finance.AccountPayable, grn.TotalValue),
	)
}

// Sale: Dr Cash / Cr Sales Revenue for the takings, Dr COGS / Cr Inventory for the cost
func postSale(ctx context.Context, repos appinventory.TransactionalRepositories, sale *trade.Sale, actor shared.Actor) error {
	cost := sale.CostOfGoods()
	return postJournal(ctx, repos, sale.SaleDate, finance.ReferenceTypeSale, sale.ID,
		fmt.Sprintf("Sale %s at %s", sale.ReceiptNo, sale.StoreName), actor,
		finance.Debit(finance.AccountCash, sale.Total),
		finance.Credit(finance.AccountSalesRevenue, sale.Total),
		finance.Debit(finance.AccountCostOfGoodsSold, cost),
		finance.Credit(finance.AccountInventory, cost),
	)
}

// Refund reverses the sale postings for the returned lines
func postRefund(ctx context.Context, repos appinventory.TransactionalRepositories, sale *trade.Sale, refund *trade.SaleRefund, actor shared.Actor) error {
	return postJournal(ctx, repos, refund.RefundDate, finance.ReferenceTypeRefund, refund.ID,
		fmt.Sprintf("Refund on sale %s", sale.ReceiptNo), actor,
		finance.Debit(finance.AccountSalesRevenue, refund.Amount),
		finance.Credit(finance.AccountCash, refund.Amount),
		finance.Debit(finance.AccountInventory, refund.Cost),
		finance.Credit(finance.AccountCostOfGoodsSold, refund.Cost),
	)
}
