package ledger

import "time"

// StockReducedEvent is emitted after a transaction's reservations are applied.
type StockReducedEvent struct {
	TransactionID uint
	Items         []Item
	OccurredAt    time.Time
}

func (StockReducedEvent) EventName() string { return "inventory.reduced" }

func NewStockReducedEvent(transactionID uint, items []Item) StockReducedEvent {
	return StockReducedEvent{TransactionID: transactionID, Items: items, OccurredAt: time.Now().UTC()}
}

// StockRevertedEvent is emitted after a transaction's reservations are restored.
type StockRevertedEvent struct {
	TransactionID uint
	Items         []Item
	OccurredAt    time.Time
}

func (StockRevertedEvent) EventName() string { return "inventory.reverted" }

func NewStockRevertedEvent(transactionID uint, items []Item) StockRevertedEvent {
	return StockRevertedEvent{TransactionID: transactionID, Items: items, OccurredAt: time.Now().UTC()}
}
