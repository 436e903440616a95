package inventory

import (
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// TransferStatus represents the lifecycle state of a transfer of goods
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusInTransit TransferStatus = "in-transit"
	TransferStatusReceived  TransferStatus = "received"
	TransferStatusRejected  TransferStatus = "rejected"
)

// IsValid checks if the status is known
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusInTransit, TransferStatusReceived, TransferStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusReceived || s == TransferStatusRejected
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return target == TransferStatusInTransit || target == TransferStatusRejected
	case TransferStatusInTransit:
		return target == TransferStatusReceived || target == TransferStatusRejected
	}
	return false
}

// TransferItem is one product line of a transfer
type TransferItem struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
}

// Transfer moves goods from one store to another in two legs: the source is
// decremented on dispatch and the destination incremented on receipt.
type Transfer struct {
	shared.BaseAggregateRoot
	TransferDate        time.Time
	FromStoreID         uuid.UUID
	FromStoreName       string
	ToStoreID           uuid.UUID
	ToStoreName         string
	Items               []TransferItem
	Status              TransferStatus
	Notes               string
	DispatchedByUserID  *string
	DispatchedByName    string
	DispatchedAt        *time.Time
	ReceivedByUserID    *string
	ReceivedByName      string
	ReceivedAt          *time.Time
	RejectedByUserID    *string
	RejectedByName      string
	RejectedAt          *time.Time
	RejectionReason     string
	RejectedFromTransit bool
}

// NewTransfer validates the stores and lines and creates a pending transfer
func NewTransfer(from, to StoreRef, date time.Time, items []TransferItem, notes string) (*Transfer, error) {
	if from.ID == uuid.Nil || to.ID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Both source and destination stores are required")
	}
	if from.ID == to.ID {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Source and destination stores must differ")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "A transfer needs at least one item")
	}
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, shared.NewDomainErrorf(shared.CodeValidationFailed, "Item %d has no product", i+1)
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainErrorf(shared.CodeValidationFailed, "Item %d quantity must be positive", i+1)
		}
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransferDate:      date,
		FromStoreID:       from.ID,
		FromStoreName:     from.Name,
		ToStoreID:         to.ID,
		ToStoreName:       to.Name,
		Items:             items,
		Status:            TransferStatusPending,
		Notes:             notes,
	}, nil
}

// StoreRef names a store by id with its denormalized display name
type StoreRef struct {
	ID   uuid.UUID
	Name string
}

// QuantitiesByProduct sums the item quantities per product
func (t *Transfer) QuantitiesByProduct() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(t.Items))
	for _, item := range t.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// CheckTransition returns an INVALID_STATE error if the move is not allowed
func (t *Transfer) CheckTransition(target TransferStatus) error {
	if !target.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown transfer status %q", target)
	}
	if !t.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot move transfer from %s to %s", t.Status, target))
	}
	return nil
}

// Dispatch moves a pending transfer in transit
func (t *Transfer) Dispatch(actor shared.Actor) error {
	if err := t.CheckTransition(TransferStatusInTransit); err != nil {
		return err
	}
	now := time.Now().UTC()
	t.Status = TransferStatusInTransit
	t.DispatchedByUserID = actor.UserIDPtr()
	t.DispatchedByName = actor.UserName
	t.DispatchedAt = &now
	t.IncrementVersion()
	return nil
}

// Receive completes a transfer at the destination
func (t *Transfer) Receive(actor shared.Actor) error {
	if err := t.CheckTransition(TransferStatusReceived); err != nil {
		return err
	}
	now := time.Now().UTC()
	t.Status = TransferStatusReceived
	t.ReceivedByUserID = actor.UserIDPtr()
	t.ReceivedByName = actor.UserName
	t.ReceivedAt = &now
	t.IncrementVersion()
	return nil
}

// Reject cancels a transfer. It returns whether goods had already left the
// source store, in which case the caller must put them back.
func (t *Transfer) Reject(actor shared.Actor, reason string) (bool, error) {
	if err := t.CheckTransition(TransferStatusRejected); err != nil {
		return false, err
	}
	wasInTransit := t.Status == TransferStatusInTransit
	now := time.Now().UTC()
	t.Status = TransferStatusRejected
	t.RejectedByUserID = actor.UserIDPtr()
	t.RejectedByName = actor.UserName
	t.RejectedAt = &now
	t.RejectionReason = reason
	t.RejectedFromTransit = wasInTransit
	t.IncrementVersion()
	return wasInTransit, nil
}
