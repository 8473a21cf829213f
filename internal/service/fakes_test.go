package service

// In-memory fakes for every repository interface, shared by the tests in
// this package. They mirror the persistence contract: ErrNotFound for
// misses, copies in and out, and the reservation fake reproduces the
// store's atomic admission checks (duplicate pair, capacity).

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/gift-registry/internal/apperror"
	"github.com/sakif/gift-registry/internal/model"
)

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("email already in use")
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", 0)
}

func (f *fakeUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.GitHubID == user.GitHubID {
			u.Email = user.Email
			u.Name = user.Name
			u.UpdatedAt = time.Now()
			*user = *u
			return nil
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) SetRole(_ context.Context, id int64, role model.Role) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

type fakeWishlistRepo struct {
	lists  map[int64]*model.Wishlist
	nextID int64
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{lists: make(map[int64]*model.Wishlist)}
}

func (f *fakeWishlistRepo) Create(_ context.Context, list *model.Wishlist) error {
	f.nextID++
	list.ID = f.nextID
	list.CreatedAt = time.Now()
	list.UpdatedAt = list.CreatedAt
	stored := *list
	f.lists[list.ID] = &stored
	return nil
}

func (f *fakeWishlistRepo) GetByID(_ context.Context, id int64) (*model.Wishlist, error) {
	l, ok := f.lists[id]
	if !ok {
		return nil, apperror.NotFound("wishlist", id)
	}
	result := *l
	return &result, nil
}

func (f *fakeWishlistRepo) ListByOwner(_ context.Context, ownerID int64) ([]model.Wishlist, error) {
	var result []model.Wishlist
	for _, l := range f.lists {
		if l.OwnerID == ownerID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (f *fakeWishlistRepo) Update(_ context.Context, list *model.Wishlist) error {
	if _, ok := f.lists[list.ID]; !ok {
		return apperror.NotFound("wishlist", list.ID)
	}
	stored := *list
	f.lists[list.ID] = &stored
	return nil
}

func (f *fakeWishlistRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.lists[id]; !ok {
		return apperror.NotFound("wishlist", id)
	}
	delete(f.lists, id)
	return nil
}

type fakeItemRepo struct {
	items  map[int64]*model.WishlistItem
	nextID int64
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[int64]*model.WishlistItem)}
}

func (f *fakeItemRepo) Create(_ context.Context, item *model.WishlistItem) error {
	f.nextID++
	item.ID = f.nextID
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id int64) (*model.WishlistItem, error) {
	i, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("item", id)
	}
	result := *i
	return &result, nil
}

func (f *fakeItemRepo) ListByWishlist(_ context.Context, wishlistID int64) ([]model.WishlistItem, error) {
	var result []model.WishlistItem
	// Iterate in id order so listings are deterministic like the store's.
	for id := int64(1); id <= f.nextID; id++ {
		if i, ok := f.items[id]; ok && i.WishlistID == wishlistID {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *model.WishlistItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return apperror.NotFound("item", item.ID)
	}
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("item", id)
	}
	delete(f.items, id)
	return nil
}

type fakeReservationRepo struct {
	reservations map[int64]*model.Reservation
	items        *fakeItemRepo
	nextID       int64
}

func newFakeReservationRepo(items *fakeItemRepo) *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: make(map[int64]*model.Reservation),
		items:        items,
	}
}

func (f *fakeReservationRepo) Insert(_ context.Context, res *model.Reservation) error {
	var reserved int64
	for _, r := range f.reservations {
		if r.ItemID == res.ItemID {
			if r.UserID == res.UserID {
				return apperror.Conflict("reservation already exists")
			}
			reserved += r.Amount
		}
	}
	if item, ok := f.items.items[res.ItemID]; ok {
		if item.Amount < reserved+res.Amount {
			return apperror.ValidationFailed("amount", "not enough of this item is left to reserve")
		}
	}
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now()
	stored := *res
	f.reservations[res.ID] = &stored
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id int64) (*model.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, apperror.NotFound("reservation", id)
	}
	result := *r
	return &result, nil
}

func (f *fakeReservationRepo) ListByItem(_ context.Context, itemID int64) ([]model.Reservation, error) {
	var result []model.Reservation
	for id := int64(1); id <= f.nextID; id++ {
		if r, ok := f.reservations[id]; ok && r.ItemID == itemID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReservationRepo) ListByUser(_ context.Context, userID int64) ([]model.Reservation, error) {
	var result []model.Reservation
	for id := int64(1); id <= f.nextID; id++ {
		if r, ok := f.reservations[id]; ok && r.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReservationRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.reservations[id]; !ok {
		return apperror.NotFound("reservation", id)
	}
	delete(f.reservations, id)
	return nil
}

func (f *fakeReservationRepo) DeleteByUser(_ context.Context, userID int64) error {
	for id, r := range f.reservations {
		if r.UserID == userID {
			delete(f.reservations, id)
		}
	}
	return nil
}

type fakeFriendRepo struct {
	pairs  map[int64]*model.FriendPair
	nextID int64
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{pairs: make(map[int64]*model.FriendPair)}
}

func (f *fakeFriendRepo) Create(_ context.Context, pair *model.FriendPair) error {
	for _, p := range f.pairs {
		if p.UserLo == pair.UserLo && p.UserHi == pair.UserHi {
			return apperror.Conflict("friendship already exists")
		}
	}
	f.nextID++
	pair.ID = f.nextID
	pair.CreatedAt = time.Now()
	stored := *pair
	f.pairs[pair.ID] = &stored
	return nil
}

func (f *fakeFriendRepo) Exists(_ context.Context, a, b int64) (bool, error) {
	pair := model.NewFriendPair(a, b)
	for _, p := range f.pairs {
		if p.UserLo == pair.UserLo && p.UserHi == pair.UserHi {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendRepo) ListByUser(_ context.Context, userID int64) ([]model.FriendPair, error) {
	var result []model.FriendPair
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.pairs[id]; ok && (p.UserLo == userID || p.UserHi == userID) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeFriendRepo) Delete(_ context.Context, a, b int64) error {
	pair := model.NewFriendPair(a, b)
	for id, p := range f.pairs {
		if p.UserLo == pair.UserLo && p.UserHi == pair.UserHi {
			delete(f.pairs, id)
			return nil
		}
	}
	return apperror.NotFound("friendship", 0)
}

type fakeCommentRepo struct {
	comments map[int64]*model.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int64]*model.Comment)}
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	f.nextID++
	comment.ID = f.nextID
	comment.CreatedAt = time.Now()
	stored := *comment
	f.comments[comment.ID] = &stored
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	result := *c
	return &result, nil
}

func (f *fakeCommentRepo) ListByItem(_ context.Context, itemID int64) ([]model.Comment, error) {
	var result []model.Comment
	// Creation order, like the store's ORDER BY id.
	for id := int64(1); id <= f.nextID; id++ {
		if c, ok := f.comments[id]; ok && c.ItemID == itemID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (f *fakeCommentRepo) Update(_ context.Context, comment *model.Comment) error {
	if _, ok := f.comments[comment.ID]; !ok {
		return apperror.NotFound("comment", comment.ID)
	}
	stored := *comment
	f.comments[comment.ID] = &stored
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

// testEnv wires every service over the fakes. Tests build their fixtures by
// writing straight into the fake maps or via the service methods.
type testEnv struct {
	users        *fakeUserRepo
	wishlists    *fakeWishlistRepo
	items        *fakeItemRepo
	reservations *fakeReservationRepo
	friends      *fakeFriendRepo
	comments     *fakeCommentRepo

	access         *AccessService
	projection     *ProjectionService
	wishlistSvc    *WishlistService
	reservationSvc *ReservationService
	commentSvc     *CommentService
	friendSvc      *FriendService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	e := &testEnv{
		users:     newFakeUserRepo(),
		wishlists: newFakeWishlistRepo(),
		items:     newFakeItemRepo(),
		friends:   newFakeFriendRepo(),
		comments:  newFakeCommentRepo(),
	}
	e.reservations = newFakeReservationRepo(e.items)

	e.access = NewAccessService(e.wishlists, e.items, e.reservations, e.friends, e.comments, logger)
	e.projection = NewProjectionService(e.wishlists, e.reservations, logger)
	e.wishlistSvc = NewWishlistService(e.access, e.projection, e.wishlists, e.items, logger)
	e.reservationSvc = NewReservationService(e.access, e.items, e.wishlists, e.reservations, logger)
	e.commentSvc = NewCommentService(e.access, e.items, e.wishlists, e.comments, logger)
	e.friendSvc = NewFriendService(e.users, e.friends, logger)

	return e
}

func (e *testEnv) addUser(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{Email: name + "@example.com", Name: name, Role: role}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("fixture: creating user %s: %v", name, err)
	}
	return user
}

func (e *testEnv) addWishlist(t *testing.T, owner *model.User, visibility model.Visibility) *model.Wishlist {
	t.Helper()
	list := &model.Wishlist{OwnerID: owner.ID, Name: "birthday", Visibility: visibility}
	if err := e.wishlists.Create(context.Background(), list); err != nil {
		t.Fatalf("fixture: creating wishlist: %v", err)
	}
	return list
}

func (e *testEnv) addItem(t *testing.T, list *model.Wishlist, amount int64) *model.WishlistItem {
	t.Helper()
	item := &model.WishlistItem{WishlistID: list.ID, Name: "lego set", Amount: amount}
	if err := e.items.Create(context.Background(), item); err != nil {
		t.Fatalf("fixture: creating item: %v", err)
	}
	return item
}

func (e *testEnv) befriend(t *testing.T, a, b *model.User) {
	t.Helper()
	pair := model.NewFriendPair(a.ID, b.ID)
	if err := e.friends.Create(context.Background(), &pair); err != nil {
		t.Fatalf("fixture: befriending: %v", err)
	}
}

func (e *testEnv) reserve(t *testing.T, user *model.User, item *model.WishlistItem, amount int64) *model.Reservation {
	t.Helper()
	res := &model.Reservation{UserID: user.ID, ItemID: item.ID, Amount: amount}
	if err := e.reservations.Insert(context.Background(), res); err != nil {
		t.Fatalf("fixture: reserving: %v", err)
	}
	return res
}
