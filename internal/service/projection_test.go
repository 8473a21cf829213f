package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/gift-registry/internal/model"
)

// The classic scenario: an item with amount 2, reserved once by each of two
// users. The owner sees 2, each reserver sees 0 (with the item still
// present), an uninvolved user doesn't see the item at all, and an admin
// sees 0 plus the original amount.
func TestProject_FullyReservedItem(t *testing.T) {
	e := newTestEnv(t)
	owner := e.addUser(t, "owner", model.RoleRegular)
	u2 := e.addUser(t, "u2", model.RoleRegular)
	u3 := e.addUser(t, "u3", model.RoleRegular)
	u4 := e.addUser(t, "u4", model.RoleRegular)
	admin := e.addUser(t, "admin", model.RoleAdmin)

	list := e.addWishlist(t, owner, model.VisibilityPublic)
	item := e.addItem(t, list, 2)
	e.reserve(t, u2, item, 1)
	e.reserve(t, u3, item, 1)

	ctx := context.Background()

	p, err := e.projection.Project(ctx, owner, item)
	if err != nil {
		t.Fatalf("Project(owner) error = %v", err)
	}
	if p.Amount != 2 {
		t.Errorf("owner sees amount %d, want 2 (reservations must be invisible)", p.Amount)
	}
	if p.OriginalAmount != nil {
		t.Error("owner must not get originalAmount")
	}

	p, err = e.projection.Project(ctx, u2, item)
	if err != nil {
		t.Fatalf("Project(reserver) error = %v", err)
	}
	if p.Amount != 0 {
		t.Errorf("reserver sees amount %d, want 0", p.Amount)
	}

	if _, err := e.projection.Project(ctx, u4, item); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("uninvolved viewer: error = %v, want ErrNotAvailable", err)
	}

	p, err = e.projection.Project(ctx, admin, item)
	if err != nil {
		t.Fatalf("Project(admin) error = %v", err)
	}
	if p.Amount != 0 {
		t.Errorf("admin sees amount %d, want 0", p.Amount)
	}
	if p.OriginalAmount == nil || *p.OriginalAmount != 2 {
		t.Errorf("admin originalAmount = %v, want 2", p.OriginalAmount)
	}
}

func TestProject_PartiallyReserved(t *testing.T) {
	e := newTestEnv(t)
	owner := e.addUser(t, "owner", model.RoleRegular)
	reserver := e.addUser(t, "reserver", model.RoleRegular)
	bystander := e.addUser(t, "bystander", model.RoleRegular)

	list := e.addWishlist(t, owner, model.VisibilityPublic)
	item := e.addItem(t, list, 5)
	e.reserve(t, reserver, item, 2)

	p, err := e.projection.Project(context.Background(), bystander, item)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if p.Amount != 3 {
		t.Errorf("bystander sees amount %d, want 3", p.Amount)
	}
	if p.OriginalAmount != nil {
		t.Error("non-admin must not get originalAmount")
	}
}

func TestProject_NoReservations(t *testing.T) {
	e := newTestEnv(t)
	owner := e.addUser(t, "owner", model.RoleRegular)
	viewer := e.addUser(t, "viewer", model.RoleRegular)

	list := e.addWishlist(t, owner, model.VisibilityPublic)
	item := e.addItem(t, list, 4)

	p, err := e.projection.Project(context.Background(), viewer, item)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if p.Amount != 4 {
		t.Errorf("amount = %d, want 4", p.Amount)
	}
}

// An owner reduces the amount below what is already reserved. Bystanders
// with a stake still see the item, but never a negative count.
func TestProject_OverReservedClampsToZero(t *testing.T) {
	e := newTestEnv(t)
	owner := e.addUser(t, "owner", model.RoleRegular)
	reserver := e.addUser(t, "reserver", model.RoleRegular)

	list := e.addWishlist(t, owner, model.VisibilityPublic)
	item := e.addItem(t, list, 5)
	e.reserve(t, reserver, item, 4)

	item.Amount = 2
	if err := e.items.Update(context.Background(), item); err != nil {
		t.Fatalf("fixture: shrinking item: %v", err)
	}

	p, err := e.projection.Project(context.Background(), reserver, item)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if p.Amount != 0 {
		t.Errorf("amount = %d, want 0 (clamped)", p.Amount)
	}
}

func TestProject_AdminOwnItemStillProjected(t *testing.T) {
	e := newTestEnv(t)
	admin := e.addUser(t, "admin", model.RoleAdmin)
	reserver := e.addUser(t, "reserver", model.RoleRegular)

	list := e.addWishlist(t, admin, model.VisibilityPublic)
	item := e.addItem(t, list, 3)
	e.reserve(t, reserver, item, 1)

	// Admins fall through the owner-passthrough so they can audit their
	// own lists too.
	p, err := e.projection.Project(context.Background(), admin, item)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if p.Amount != 2 {
		t.Errorf("admin-owner sees amount %d, want 2", p.Amount)
	}
	if p.OriginalAmount == nil || *p.OriginalAmount != 3 {
		t.Errorf("admin-owner originalAmount = %v, want 3", p.OriginalAmount)
	}
}

func TestProjectAll_DropsDepletedItems(t *testing.T) {
	e := newTestEnv(t)
	owner := e.addUser(t, "owner", model.RoleRegular)
	reserver := e.addUser(t, "reserver", model.RoleRegular)
	bystander := e.addUser(t, "bystander", model.RoleRegular)

	list := e.addWishlist(t, owner, model.VisibilityPublic)
	open := e.addItem(t, list, 3)
	depleted := e.addItem(t, list, 1)
	e.reserve(t, reserver, depleted, 1)

	items, err := e.items.ListByWishlist(context.Background(), list.ID)
	if err != nil {
		t.Fatalf("fixture: listing items: %v", err)
	}

	projected, err := e.projection.ProjectAll(context.Background(), bystander, items)
	if err != nil {
		t.Fatalf("ProjectAll() error = %v", err)
	}
	if len(projected) != 1 {
		t.Fatalf("ProjectAll() returned %d items, want 1 (depleted one dropped)", len(projected))
	}
	if projected[0].ID != open.ID {
		t.Errorf("surviving item = %d, want %d", projected[0].ID, open.ID)
	}

	// The reserver keeps seeing the depleted item.
	projected, err = e.projection.ProjectAll(context.Background(), reserver, items)
	if err != nil {
		t.Fatalf("ProjectAll(reserver) error = %v", err)
	}
	if len(projected) != 2 {
		t.Errorf("reserver sees %d items, want 2", len(projected))
	}
}
