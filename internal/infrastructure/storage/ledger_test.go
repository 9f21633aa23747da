package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain/ledger"
)

func TestTryReserve_Decrements(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 5)
	l := NewLedger(db)

	err := l.TryReserve(context.Background(), p.ID, 3)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), productQuantity(t, db, p.ID))
}

func TestTryReserve_Insufficient_LeavesQuantityUnchanged(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 2)
	l := NewLedger(db)

	err := l.TryReserve(context.Background(), p.ID, 3)

	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
	assert.Equal(t, int64(2), productQuantity(t, db, p.ID))
}

func TestTryReserve_ExactQuantity_DrainsToZero(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 4)
	l := NewLedger(db)

	err := l.TryReserve(context.Background(), p.ID, 4)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), productQuantity(t, db, p.ID))
}

func TestTryReserve_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	l := NewLedger(db)

	err := l.TryReserve(context.Background(), 999, 1)

	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestRelease_Increments(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 1)
	l := NewLedger(db)

	err := l.Release(context.Background(), p.ID, 2)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), productQuantity(t, db, p.ID))
}

func TestRelease_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	l := NewLedger(db)

	err := l.Release(context.Background(), 999, 1)

	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestTryReserveAll_ShortfallRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	first := seedProduct(t, db, 10)
	second := seedProduct(t, db, 1)
	l := NewLedger(db)

	err := l.TryReserveAll(context.Background(), []ledger.Item{
		{ProductID: first.ID, Quantity: 5},
		{ProductID: second.ID, Quantity: 2},
	})

	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
	assert.Equal(t, int64(10), productQuantity(t, db, first.ID))
	assert.Equal(t, int64(1), productQuantity(t, db, second.ID))
}

func TestTryReserveAll_AllLinesApplied(t *testing.T) {
	db := newTestDB(t)
	first := seedProduct(t, db, 10)
	second := seedProduct(t, db, 4)
	l := NewLedger(db)

	err := l.TryReserveAll(context.Background(), []ledger.Item{
		{ProductID: first.ID, Quantity: 5},
		{ProductID: second.ID, Quantity: 4},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), productQuantity(t, db, first.ID))
	assert.Equal(t, int64(0), productQuantity(t, db, second.ID))
}

func TestReleaseAll_RestoresEveryLine(t *testing.T) {
	db := newTestDB(t)
	first := seedProduct(t, db, 0)
	second := seedProduct(t, db, 1)
	l := NewLedger(db)

	err := l.ReleaseAll(context.Background(), []ledger.Item{
		{ProductID: first.ID, Quantity: 5},
		{ProductID: second.ID, Quantity: 4},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), productQuantity(t, db, first.ID))
	assert.Equal(t, int64(5), productQuantity(t, db, second.ID))
}

// Quantity 5, twenty concurrent single-unit reservations: exactly five may
// win and the quantity must land on zero, never below.
func TestTryReserve_ConcurrentWritersNeverOversell(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 5)
	l := NewLedger(db)

	const writers = 20
	var wg sync.WaitGroup
	results := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.TryReserve(context.Background(), p.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
			lost++
		}
	}

	assert.Equal(t, 5, won)
	assert.Equal(t, writers-5, lost)
	assert.Equal(t, int64(0), productQuantity(t, db, p.ID))
}
