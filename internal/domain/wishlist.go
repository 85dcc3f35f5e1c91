package domain

import (
	"context"
	"time"
)

// Wishlist is a user's gift list. Exactly one per Telegram user, created
// lazily the first time the user opens the app.
type Wishlist struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	OwnerName string `json:"owner_name"`
}

// WishlistItem is a single desired gift. Reservation fields are nil until
// another user claims the item; at most one claim ever succeeds.
type WishlistItem struct {
	ID           int64      `json:"id"`
	WishlistID   int64      `json:"wishlist_id"`
	URL          string     `json:"url"`
	Title        *string    `json:"title"`
	Image        *string    `json:"image"`
	Note         *string    `json:"note"`
	Price        *string    `json:"price"`
	ReservedBy   *int64     `json:"reserved_by,omitempty"`
	ReservedName *string    `json:"reserved_name,omitempty"`
	ReservedAt   *time.Time `json:"reserved_at,omitempty"`
}

// Reserved reports whether the item has been claimed.
func (i *WishlistItem) Reserved() bool {
	return i.ReservedBy != nil
}

// ProductMeta is the normalized output of any extraction strategy. Fields
// the source page didn't yield stay nil; that is partial success, not an error.
type ProductMeta struct {
	Title *string `json:"title"`
	Image *string `json:"image"`
	Price *string `json:"price"`
}

// Reservation carries the claim written onto an item.
type Reservation struct {
	UserID   int64
	UserName string
	At       time.Time
}

// WishlistStore is the interface to the external record service that owns
// wishlist persistence. Implementations must make ReserveItem conditional so
// that of two concurrent claims exactly one succeeds.
type WishlistStore interface {
	// WishlistByOwner returns the owner's wishlist, or ErrNotFound.
	WishlistByOwner(ctx context.Context, ownerID int64) (*Wishlist, error)

	// WishlistByID returns a wishlist by primary key, or ErrNotFound.
	WishlistByID(ctx context.Context, id int64) (*Wishlist, error)

	// CreateWishlist creates a wishlist and returns the stored representation.
	CreateWishlist(ctx context.Context, ownerID int64, ownerName string) (*Wishlist, error)

	// Items lists all items of a wishlist.
	Items(ctx context.Context, wishlistID int64) ([]WishlistItem, error)

	// CreateItem creates an item and returns the stored representation.
	CreateItem(ctx context.Context, item *WishlistItem) (*WishlistItem, error)

	// ItemByID returns an item by primary key, or ErrNotFound.
	ItemByID(ctx context.Context, id int64) (*WishlistItem, error)

	// ReserveItem writes the reservation onto an unreserved item. Returns the
	// updated item, or nil when the item does not exist or is already
	// reserved (including a lost concurrent claim).
	ReserveItem(ctx context.Context, itemID int64, res Reservation) (*WishlistItem, error)

	// DeleteItem deletes an item scoped to its wishlist. Returns false when
	// no matching row existed.
	DeleteItem(ctx context.Context, itemID, wishlistID int64) (bool, error)
}
