package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/auth"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
	apperrors "github.com/mgolovanova35-netizen/wishlist-backend/pkg/errors"
)

// ============================================================================
// Mocks
// ============================================================================

type mockStore struct {
	mock.Mock
}

func (m *mockStore) WishlistByOwner(ctx context.Context, ownerID int64) (*domain.Wishlist, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockStore) WishlistByID(ctx context.Context, id int64) (*domain.Wishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockStore) CreateWishlist(ctx context.Context, ownerID int64, ownerName string) (*domain.Wishlist, error) {
	args := m.Called(ctx, ownerID, ownerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockStore) Items(ctx context.Context, wishlistID int64) ([]domain.WishlistItem, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistItem), args.Error(1)
}

func (m *mockStore) CreateItem(ctx context.Context, item *domain.WishlistItem) (*domain.WishlistItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WishlistItem), args.Error(1)
}

func (m *mockStore) ItemByID(ctx context.Context, id int64) (*domain.WishlistItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WishlistItem), args.Error(1)
}

func (m *mockStore) ReserveItem(ctx context.Context, itemID int64, res domain.Reservation) (*domain.WishlistItem, error) {
	args := m.Called(ctx, itemID, res)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WishlistItem), args.Error(1)
}

func (m *mockStore) DeleteItem(ctx context.Context, itemID, wishlistID int64) (bool, error) {
	args := m.Called(ctx, itemID, wishlistID)
	return args.Bool(0), args.Error(1)
}

type mockLinkParser struct {
	mock.Mock
}

func (m *mockLinkParser) Parse(ctx context.Context, pageURL string) (*domain.ProductMeta, error) {
	args := m.Called(ctx, pageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductMeta), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ItemReserved(ctx context.Context, ownerChatID int64, itemTitle string) {
	m.Called(ctx, ownerChatID, itemTitle)
}

// ============================================================================
// Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testUser() *auth.User {
	return &auth.User{ID: 1001, FirstName: "Masha", LastName: "Golovanova"}
}

func strptr(s string) *string { return &s }

func int64ptr(v int64) *int64 { return &v }

// ============================================================================
// ListItems
// ============================================================================

func TestListItems_ExistingWishlist(t *testing.T) {
	store := new(mockStore)
	wl := &domain.Wishlist{ID: 7, OwnerID: 1001, OwnerName: "Masha Golovanova"}
	store.On("WishlistByOwner", mock.Anything, int64(1001)).Return(wl, nil)
	store.On("Items", mock.Anything, int64(7)).Return([]domain.WishlistItem{{ID: 1}}, nil)

	svc := NewWishlistService(store, new(mockLinkParser), nil, nil, testLogger())
	got, items, err := svc.ListItems(context.Background(), testUser())

	require.NoError(t, err)
	assert.Equal(t, wl, got)
	assert.Len(t, items, 1)
	store.AssertExpectations(t)
}

func TestListItems_ProvisionsWishlist(t *testing.T) {
	store := new(mockStore)
	wl := &domain.Wishlist{ID: 7, OwnerID: 1001, OwnerName: "Masha Golovanova"}
	store.On("WishlistByOwner", mock.Anything, int64(1001)).Return(nil, apperrors.ErrNotFound)
	store.On("CreateWishlist", mock.Anything, int64(1001), "Masha Golovanova").Return(wl, nil)

	svc := NewWishlistService(store, new(mockLinkParser), nil, nil, testLogger())
	got, items, err := svc.ListItems(context.Background(), testUser())

	require.NoError(t, err)
	assert.Equal(t, wl, got)
	assert.Empty(t, items)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Items", mock.Anything, mock.Anything)
}

// ============================================================================
// AddItem
// ============================================================================

func TestAddItem_Success(t *testing.T) {
	store := new(mockStore)
	wl := &domain.Wishlist{ID: 7, OwnerID: 1001}
	stored := &domain.WishlistItem{ID: 42, WishlistID: 7, URL: "https://example.com/p"}
	store.On("WishlistByOwner", mock.Anything, int64(1001)).Return(wl, nil)
	store.On("CreateItem", mock.Anything, mock.MatchedBy(func(item *domain.WishlistItem) bool {
		return item.WishlistID == 7 &&
			item.URL == "https://example.com/p" &&
			item.Title != nil && *item.Title == "Плед"
	})).Return(stored, nil)

	svc := NewWishlistService(store, new(mockLinkParser), nil, nil, testLogger())
	item, err := svc.AddItem(context.Background(), testUser(), AddItemInput{
		URL:   "https://example.com/p",
		Title: strptr("Плед"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), item.ID)
	store.AssertExpectations(t)
}

func TestAddItem_NoWishlist(t *testing.T) {
	store := new(mockStore)
	store.On("WishlistByOwner", mock.Anything, int64(1001)).Return(nil, apperrors.ErrNotFound)

	svc := NewWishlistService(store, new(mockLinkParser), nil, nil, testLogger())
	_, err := svc.AddItem(context.Background(), testUser(), AddItemInput{URL: "https://example.com/p"})

	assert.ErrorIs(t, err, apperrors.ErrNoWishlist)
	store.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
}

// ============================================================================
// ParseLink
// ============================================================================

func TestParseLink_WrapsExtractionFailure(t *testing.T) {
	parser := new(mockLinkParser)
	parser.On("Parse", mock.Anything, "https://example.com/p").Return(nil, fmt.Errorf("status 404"))

	svc := NewWishlistService(new(mockStore), parser, nil, nil, testLogger())
	_, err := svc.ParseLink(context.Background(), "https://example.com/p")

	assert.ErrorIs(t, err, apperrors.ErrExtraction)
}

// ============================================================================
// ReserveItem
// ============================================================================

func TestReserveItem_Success(t *testing.T) {
	store := new(mockStore)
	reserved := &domain.WishlistItem{
		ID:         42,
		WishlistID: 7,
		Title:      strptr("Плед"),
		ReservedBy: int64ptr(2002),
	}
	store.On("ReserveItem", mock.Anything, int64(42), mock.MatchedBy(func(res domain.Reservation) bool {
		return res.UserID == 1001 && res.UserName == "Masha Golovanova" && !res.At.IsZero()
	})).Return(reserved, nil)

	svc := NewWishlistService(store, new(mockLinkParser), nil, nil, testLogger())
	err := svc.ReserveItem(context.Background(), testUser(), 42)

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestReserveItem_AlreadyReserved(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)
	store.On("ReserveItem", mock.Anything, int64(42), mock.Anything).Return(nil, nil)

	svc := NewWishlistService(store, new(mockLinkParser), nil, notifier, testLogger())
	err := svc.ReserveItem(context.Background(), testUser(), 42)

	assert.ErrorIs(t, err, apperrors.ErrAlreadyReserved)
	notifier.AssertNotCalled(t, "ItemReserved", mock.Anything, mock.Anything, mock.Anything)
}

func TestReserveItem_NotifiesOwner(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)
	reserved := &domain.WishlistItem{ID: 42, WishlistID: 7, Title: strptr("Плед"), ReservedBy: int64ptr(1001)}
	store.On("ReserveItem", mock.Anything, int64(42), mock.Anything).Return(reserved, nil)
	store.On("WishlistByID", mock.Anything, int64(7)).Return(&domain.Wishlist{ID: 7, OwnerID: 3003}, nil)
	notifier.On("ItemReserved", mock.Anything, int64(3003), "Плед").Return()

	svc := NewWishlistService(store, new(mockLinkParser), nil, notifier, testLogger())
	err := svc.ReserveItem(context.Background(), testUser(), 42)

	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestReserveItem_NotificationFailureDoesNotFailReserve(t *testing.T) {
	store := new(mockStore)
	notifier := new(mockNotifier)
	reserved := &domain.WishlistItem{ID: 42, WishlistID: 7, ReservedBy: int64ptr(1001)}
	store.On("ReserveItem", mock.Anything, int64(42), mock.Anything).Return(reserved, nil)
	store.On("WishlistByID", mock.Anything, int64(7)).
		Return(nil, apperrors.Upstream(fmt.Errorf("status 503")))

	svc := NewWishlistService(store, new(mockLinkParser), nil, notifier, testLogger())
	err := svc.ReserveItem(context.Background(), testUser(), 42)

	require.NoError(t, err)
	notifier.AssertNotCalled(t, "ItemReserved", mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// DeleteItem
// ============================================================================

func TestDeleteItem_Success(t *testing.T) {
	store := new(mockStore)
	store.On("WishlistByOwner", mock.Anything, int64(1001)).Return(&domain.Wishlist{ID: 7, OwnerID: 1001}, nil)
	store.On("DeleteItem", mock.Anything, int64(42), int64(7)).Return(true, nil)

	svc := NewWishlistService(store, new(mockLinkParser), nil, nil, testLogger())
	require.NoError(t, svc.DeleteItem(context.Background(), testUser(), 42))
	store.AssertExpectations(t)
}

func TestDeleteItem_NoMatch(t *testing.T) {
	store := new(mockStore)
	store.On("WishlistByOwner", mock.Anything, int64(1001)).Return(&domain.Wishlist{ID: 7, OwnerID: 1001}, nil)
	store.On("DeleteItem", mock.Anything, int64(42), int64(7)).Return(false, nil)

	svc := NewWishlistService(store, new(mockLinkParser), nil, nil, testLogger())
	err := svc.DeleteItem(context.Background(), testUser(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
