package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/auth"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/event"
	apperrors "github.com/mgolovanova35-netizen/wishlist-backend/pkg/errors"
)

// LinkParser resolves product metadata for a URL.
type LinkParser interface {
	Parse(ctx context.Context, pageURL string) (*domain.ProductMeta, error)
}

// ReservationNotifier tells a wishlist owner their item was claimed.
type ReservationNotifier interface {
	ItemReserved(ctx context.Context, ownerChatID int64, itemTitle string)
}

// WishlistService implements the business logic behind every API operation.
// It is stateless; all shared mutable state lives in the external store.
type WishlistService struct {
	store    domain.WishlistStore
	parser   LinkParser
	events   *event.Producer
	notifier ReservationNotifier
	logger   *slog.Logger
}

// NewWishlistService creates the service. events and notifier may be nil.
func NewWishlistService(
	store domain.WishlistStore,
	parser LinkParser,
	events *event.Producer,
	notifier ReservationNotifier,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		store:    store,
		parser:   parser,
		events:   events,
		notifier: notifier,
		logger:   logger,
	}
}

// ListItems returns the caller's wishlist and its items, provisioning the
// wishlist on first call. This is the only operation that creates one; until
// it has run, adds fail with ErrNoWishlist.
func (s *WishlistService) ListItems(ctx context.Context, user *auth.User) (*domain.Wishlist, []domain.WishlistItem, error) {
	wl, err := s.store.WishlistByOwner(ctx, user.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		wl, err = s.store.CreateWishlist(ctx, user.ID, user.DisplayName())
		if err != nil {
			return nil, nil, err
		}
		s.logger.InfoContext(ctx, "wishlist created",
			slog.Int64("owner_id", user.ID),
			slog.Int64("wishlist_id", wl.ID),
		)
		return wl, []domain.WishlistItem{}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.Items(ctx, wl.ID)
	if err != nil {
		return nil, nil, err
	}
	return wl, items, nil
}

// AddItemInput holds the fields of a new item. Everything except URL is
// optional; metadata usually comes pre-filled from a prior parse call.
type AddItemInput struct {
	URL   string
	Title *string
	Image *string
	Note  *string
	Price *string
}

// AddItem appends an item to the caller's wishlist.
func (s *WishlistService) AddItem(ctx context.Context, user *auth.User, input AddItemInput) (*domain.WishlistItem, error) {
	wl, err := s.store.WishlistByOwner(ctx, user.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NoWishlist()
	}
	if err != nil {
		return nil, err
	}

	item, err := s.store.CreateItem(ctx, &domain.WishlistItem{
		WishlistID: wl.ID,
		URL:        input.URL,
		Title:      input.Title,
		Image:      input.Image,
		Note:       input.Note,
		Price:      input.Price,
	})
	if err != nil {
		return nil, err
	}

	s.events.ItemAdded(ctx, item, user.ID)
	return item, nil
}

// ParseLink resolves product metadata for a URL.
func (s *WishlistService) ParseLink(ctx context.Context, pageURL string) (*domain.ProductMeta, error) {
	meta, err := s.parser.Parse(ctx, pageURL)
	if err != nil {
		return nil, apperrors.Extraction(err)
	}
	return meta, nil
}

// ReserveItem claims an unreserved item for the caller. First claim wins:
// the store's conditional update guarantees at most one reservation ever
// lands, and a lost race reports the same ErrAlreadyReserved as a plainly
// reserved or nonexistent item.
func (s *WishlistService) ReserveItem(ctx context.Context, user *auth.User, itemID int64) error {
	item, err := s.store.ReserveItem(ctx, itemID, domain.Reservation{
		UserID:   user.ID,
		UserName: user.DisplayName(),
		At:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if item == nil {
		return apperrors.ErrAlreadyReserved
	}

	s.events.ItemReserved(ctx, item)
	s.notifyOwner(ctx, item)
	return nil
}

// DeleteItem removes an item from the caller's own wishlist.
func (s *WishlistService) DeleteItem(ctx context.Context, user *auth.User, itemID int64) error {
	wl, err := s.store.WishlistByOwner(ctx, user.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteItem(ctx, itemID, wl.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	return nil
}

// notifyOwner looks up the item's wishlist and pings its owner. Best-effort:
// a failed lookup only costs the notification.
func (s *WishlistService) notifyOwner(ctx context.Context, item *domain.WishlistItem) {
	if s.notifier == nil {
		return
	}

	wl, err := s.store.WishlistByID(ctx, item.WishlistID)
	if err != nil {
		s.logger.WarnContext(ctx, "owner lookup for notification failed",
			slog.Int64("wishlist_id", item.WishlistID),
			slog.String("error", err.Error()),
		)
		return
	}

	var title string
	if item.Title != nil {
		title = *item.Title
	}
	s.notifier.ItemReserved(ctx, wl.OwnerID, title)
}
