package catalog

import (
	"maps"
	"slices"
	"strings"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// stockSnapshot is the stock representation of a product at one moment
type stockSnapshot struct {
	total   int
	byStore map[uuid.UUID]int
}

func snapshotStock(p *catalog.Product) stockSnapshot {
	return stockSnapshot{total: p.TotalStock(), byStore: maps.Clone(p.StockByStore)}
}

func entryFor(p *catalog.Product, t inventory.HistoryType, change, current int, storeID *uuid.UUID, description string, actor shared.Actor) inventory.HistoryEntryInput {
	return inventory.HistoryEntryInput{
		Type:           t,
		ReferenceID:    p.ID,
		Description:    description,
		ProductID:      p.ID,
		ProductName:    p.Name,
		QuantityChange: change,
		CurrentStock:   current,
		StoreID:        storeID,
		Actor:          actor,
	}
}

// openingEntries logs the stock a new product starts with
func openingEntries(p *catalog.Product, actor shared.Actor) []inventory.HistoryEntryInput {
	var out []inventory.HistoryEntryInput
	if p.UsesStoreStock() {
		for _, storeID := range p.StoreIDs() {
			if qty := p.StockByStore[storeID]; qty != 0 {
				out = append(out, entryFor(p, inventory.HistoryTypeInitialStock, qty, qty, &storeID, "", actor))
			}
		}
	}
	if len(out) == 0 {
		out = append(out, entryFor(p, inventory.HistoryTypeInitialStock, p.Stock, p.Stock, nil, "", actor))
	}
	return out
}

// editEntries logs the difference between two stock representations. When
// the product switches between aggregate and per-store stock, the scopes it
// leaves are written off to zero and the scopes it enters are opened, so each
// scope keeps folding to its own count.
func editEntries(before stockSnapshot, p *catalog.Product, reason string, actor shared.Actor) []inventory.HistoryEntryInput {
	var out []inventory.HistoryEntryInput
	switch {
	case before.byStore != nil && p.UsesStoreStock():
		stores := map[uuid.UUID]struct{}{}
		for id := range before.byStore {
			stores[id] = struct{}{}
		}
		for _, id := range p.StoreIDs() {
			stores[id] = struct{}{}
		}
		for _, storeID := range sortedIDs(stores) {
			prev, cur := before.byStore[storeID], p.StockByStore[storeID]
			if prev != cur {
				out = append(out, entryFor(p, inventory.HistoryTypeProductEdit, cur-prev, cur, &storeID, reason, actor))
			}
		}
	case before.byStore != nil:
		for _, storeID := range sortedIDs(keySet(before.byStore)) {
			if prev := before.byStore[storeID]; prev != 0 {
				out = append(out, entryFor(p, inventory.HistoryTypeProductEdit, -prev, 0, &storeID, reason, actor))
			}
		}
		if p.Stock != 0 {
			out = append(out, entryFor(p, inventory.HistoryTypeProductEdit, p.Stock, p.Stock, nil, reason, actor))
		}
	case p.UsesStoreStock():
		if before.total != 0 {
			out = append(out, entryFor(p, inventory.HistoryTypeProductEdit, -before.total, 0, nil, reason, actor))
		}
		for _, storeID := range p.StoreIDs() {
			if cur := p.StockByStore[storeID]; cur != 0 {
				out = append(out, entryFor(p, inventory.HistoryTypeProductEdit, cur, cur, &storeID, reason, actor))
			}
		}
	default:
		if p.Stock != before.total {
			out = append(out, entryFor(p, inventory.HistoryTypeProductEdit, p.Stock-before.total, p.Stock, nil, reason, actor))
		}
	}
	return out
}

// deletionEntries removes every counted unit from stock
func deletionEntries(p *catalog.Product, actor shared.Actor) []inventory.HistoryEntryInput {
	var out []inventory.HistoryEntryInput
	if p.UsesStoreStock() {
		for _, storeID := range p.StoreIDs() {
			if qty := p.StockByStore[storeID]; qty != 0 {
				out = append(out, entryFor(p, inventory.HistoryTypeProductDeleted, -qty, 0, &storeID, "", actor))
			}
		}
	} else if p.Stock != 0 {
		out = append(out, entryFor(p, inventory.HistoryTypeProductDeleted, -p.Stock, 0, nil, "", actor))
	}
	if len(out) == 0 {
		out = append(out, entryFor(p, inventory.HistoryTypeProductDeleted, 0, 0, nil, "", actor))
	}
	return out
}

func keySet(stock map[uuid.UUID]int) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(stock))
	for id := range stock {
		set[id] = struct{}{}
	}
	return set
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := slices.Collect(maps.Keys(set))
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return ids
}
