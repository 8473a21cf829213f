package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/model"
)

// reservationFixture is the common setup: an owner with one item, plus two
// potential reservers.
type reservationFixture struct {
	db    *DB
	store *ReservationStore
	item  *model.WishlistItem
	guest *model.User
	third *model.User
}

func newReservationFixture(t *testing.T, amount int64) *reservationFixture {
	t.Helper()
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	list := createTestWishlist(t, db, owner.ID, model.VisibilityPublic)
	return &reservationFixture{
		db:    db,
		store: NewReservationStore(db),
		item:  createTestItem(t, db, list.ID, amount),
		guest: createTestUser(t, db, "guest"),
		third: createTestUser(t, db, "third"),
	}
}

func TestReservationInsert(t *testing.T) {
	f := newReservationFixture(t, 3)

	res := &model.Reservation{UserID: f.guest.ID, ItemID: f.item.ID, Amount: 2}
	if err := f.store.Insert(context.Background(), res); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if res.ID == 0 {
		t.Error("Insert() did not set res.ID")
	}
	if res.CreatedAt.IsZero() {
		t.Error("Insert() did not set res.CreatedAt")
	}
}

func TestReservationInsert_CapacityGuard(t *testing.T) {
	f := newReservationFixture(t, 3)
	ctx := context.Background()

	if err := f.store.Insert(ctx, &model.Reservation{UserID: f.guest.ID, ItemID: f.item.ID, Amount: 2}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// 1 of 3 remains; asking for 2 must insert zero rows.
	over := &model.Reservation{UserID: f.third.ID, ItemID: f.item.ID, Amount: 2}
	err := f.store.Insert(ctx, over)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Insert() over capacity error = %v, want ErrValidation", err)
	}

	// The exact remainder still fits.
	fit := &model.Reservation{UserID: f.third.ID, ItemID: f.item.ID, Amount: 1}
	if err := f.store.Insert(ctx, fit); err != nil {
		t.Fatalf("Insert() exact remainder error = %v", err)
	}
}

func TestReservationInsert_ConcurrentReserversNeverOvershoot(t *testing.T) {
	const (
		capacity = 5
		each     = 2
		workers  = 8
	)

	db := newTestDB(t)
	ctx := context.Background()
	store := NewReservationStore(db)

	owner := createTestUser(t, db, "owner")
	list := createTestWishlist(t, db, owner.ID, model.VisibilityPublic)
	item := createTestItem(t, db, list.ID, capacity)

	reservers := make([]*model.User, workers)
	for i := range reservers {
		reservers[i] = createTestUser(t, db, fmt.Sprintf("reserver-%d", i))
	}

	// All workers race the guarded INSERT for the same item. The losers must
	// fail the capacity check; nothing may push the total past the amount.
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i, u := range reservers {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			errs[i] = store.Insert(ctx, &model.Reservation{UserID: userID, ItemID: item.ID, Amount: each})
		}(i, u.ID)
	}
	wg.Wait()

	var admitted int
	for i, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, apperror.ErrValidation):
		default:
			t.Errorf("worker %d: unexpected error %v", i, err)
		}
	}

	all, err := store.ListByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListByItem() error = %v", err)
	}
	var total int64
	for _, r := range all {
		total += r.Amount
	}

	if total > capacity {
		t.Errorf("reserved total = %d, exceeds item amount %d", total, capacity)
	}
	if int64(admitted)*each != total {
		t.Errorf("admitted %d × %d = %d, but stored total is %d", admitted, each, int64(admitted)*each, total)
	}
	if admitted == 0 {
		t.Error("no reservation was admitted at all")
	}
}

func TestReservationInsert_MissingItem(t *testing.T) {
	f := newReservationFixture(t, 1)

	res := &model.Reservation{UserID: f.guest.ID, ItemID: 999, Amount: 1}
	err := f.store.Insert(context.Background(), res)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Insert() on missing item error = %v, want ErrValidation", err)
	}
}

func TestReservationInsert_DuplicateReserver(t *testing.T) {
	f := newReservationFixture(t, 5)
	ctx := context.Background()

	if err := f.store.Insert(ctx, &model.Reservation{UserID: f.guest.ID, ItemID: f.item.ID, Amount: 1}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// One reservation per user per item, even with capacity to spare.
	again := &model.Reservation{UserID: f.guest.ID, ItemID: f.item.ID, Amount: 1}
	err := f.store.Insert(ctx, again)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Insert() duplicate error = %v, want ErrConflict", err)
	}
}

func TestReservationDelete_FreesCapacity(t *testing.T) {
	f := newReservationFixture(t, 1)
	ctx := context.Background()

	held := &model.Reservation{UserID: f.guest.ID, ItemID: f.item.ID, Amount: 1}
	if err := f.store.Insert(ctx, held); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	blocked := &model.Reservation{UserID: f.third.ID, ItemID: f.item.ID, Amount: 1}
	if err := f.store.Insert(ctx, blocked); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Insert() while depleted error = %v, want ErrValidation", err)
	}

	if err := f.store.Delete(ctx, held.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if err := f.store.Insert(ctx, blocked); err != nil {
		t.Fatalf("Insert() after release error = %v", err)
	}
}

func TestReservationDelete_Missing(t *testing.T) {
	f := newReservationFixture(t, 1)

	err := f.store.Delete(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestReservationListByItem_OldestFirst(t *testing.T) {
	f := newReservationFixture(t, 5)
	ctx := context.Background()

	first := &model.Reservation{UserID: f.guest.ID, ItemID: f.item.ID, Amount: 2}
	second := &model.Reservation{UserID: f.third.ID, ItemID: f.item.ID, Amount: 1}
	for _, r := range []*model.Reservation{first, second} {
		if err := f.store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	got, err := f.store.ListByItem(ctx, f.item.ID)
	if err != nil {
		t.Fatalf("ListByItem() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reservations, want 2", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("ListByItem() order = [%d %d], want [%d %d]", got[0].ID, got[1].ID, first.ID, second.ID)
	}
}

func TestReservationDeleteByUser(t *testing.T) {
	f := newReservationFixture(t, 5)
	ctx := context.Background()

	other := createTestItem(t, f.db, f.item.WishlistID, 2)
	for _, itemID := range []int64{f.item.ID, other.ID} {
		if err := f.store.Insert(ctx, &model.Reservation{UserID: f.guest.ID, ItemID: itemID, Amount: 1}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	if err := f.store.Insert(ctx, &model.Reservation{UserID: f.third.ID, ItemID: f.item.ID, Amount: 1}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := f.store.DeleteByUser(ctx, f.guest.ID); err != nil {
		t.Fatalf("DeleteByUser() error = %v", err)
	}

	mine, err := f.store.ListByUser(ctx, f.guest.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("got %d reservations after clear, want 0", len(mine))
	}

	// Other users' reservations are untouched, and clearing again is a no-op.
	theirs, err := f.store.ListByUser(ctx, f.third.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(theirs) != 1 {
		t.Errorf("got %d reservations for bystander, want 1", len(theirs))
	}
	if err := f.store.DeleteByUser(ctx, f.guest.ID); err != nil {
		t.Errorf("DeleteByUser() second call error = %v, want nil", err)
	}
}
