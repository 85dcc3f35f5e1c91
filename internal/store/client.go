// Package store talks to the external record service that owns wishlist
// persistence. The service speaks a PostgREST-style dialect: one path per
// table, equality filters as `column=eq.value`, null tests as
// `column=is.null`, and `Prefer: return=representation` to get written rows
// back. The store is the sole arbiter of consistency; this client holds no
// state beyond its connection pool.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
	apperrors "github.com/mgolovanova35-netizen/wishlist-backend/pkg/errors"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/httpclient"
)

const (
	tableWishlists = "wishlists"
	tableItems     = "wishlist_items"

	maxResponseBytes = 1 << 20
)

// Client implements domain.WishlistStore over the record service's HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// New creates a store client. baseURL is the record service root (the table
// name is appended as a path segment).
func New(baseURL, apiKey string, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    http,
		logger:  logger,
	}
}

// WishlistByOwner returns the owner's wishlist, or ErrNotFound.
func (c *Client) WishlistByOwner(ctx context.Context, ownerID int64) (*domain.Wishlist, error) {
	q := url.Values{}
	q.Set("owner_id", "eq."+strconv.FormatInt(ownerID, 10))
	q.Set("limit", "1")

	var rows []domain.Wishlist
	if err := c.do(ctx, http.MethodGet, tableWishlists, q, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}

// WishlistByID returns a wishlist by primary key, or ErrNotFound.
func (c *Client) WishlistByID(ctx context.Context, id int64) (*domain.Wishlist, error) {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	q.Set("limit", "1")

	var rows []domain.Wishlist
	if err := c.do(ctx, http.MethodGet, tableWishlists, q, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}

// CreateWishlist creates a wishlist and returns the stored representation.
func (c *Client) CreateWishlist(ctx context.Context, ownerID int64, ownerName string) (*domain.Wishlist, error) {
	body := map[string]any{
		"owner_id":   ownerID,
		"owner_name": ownerName,
	}

	var rows []domain.Wishlist
	if err := c.do(ctx, http.MethodPost, tableWishlists, nil, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.Upstream(fmt.Errorf("create wishlist: empty representation"))
	}
	return &rows[0], nil
}

// Items lists all items of a wishlist, oldest first.
func (c *Client) Items(ctx context.Context, wishlistID int64) ([]domain.WishlistItem, error) {
	q := url.Values{}
	q.Set("wishlist_id", "eq."+strconv.FormatInt(wishlistID, 10))
	q.Set("order", "id.asc")

	var rows []domain.WishlistItem
	if err := c.do(ctx, http.MethodGet, tableItems, q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateItem creates an item and returns the stored representation.
func (c *Client) CreateItem(ctx context.Context, item *domain.WishlistItem) (*domain.WishlistItem, error) {
	body := map[string]any{
		"wishlist_id": item.WishlistID,
		"url":         item.URL,
		"title":       item.Title,
		"image":       item.Image,
		"note":        item.Note,
		"price":       item.Price,
	}

	var rows []domain.WishlistItem
	if err := c.do(ctx, http.MethodPost, tableItems, nil, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.Upstream(fmt.Errorf("create item: empty representation"))
	}
	return &rows[0], nil
}

// ItemByID returns an item by primary key, or ErrNotFound.
func (c *Client) ItemByID(ctx context.Context, id int64) (*domain.WishlistItem, error) {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	q.Set("limit", "1")

	var rows []domain.WishlistItem
	if err := c.do(ctx, http.MethodGet, tableItems, q, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}

// ReserveItem writes the reservation onto an unreserved item. The
// `reserved_by=is.null` filter makes the update conditional, so of two
// concurrent claims the store applies exactly one; the loser gets zero rows
// back and nil is returned.
func (c *Client) ReserveItem(ctx context.Context, itemID int64, res domain.Reservation) (*domain.WishlistItem, error) {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(itemID, 10))
	q.Set("reserved_by", "is.null")

	body := map[string]any{
		"reserved_by":   res.UserID,
		"reserved_name": res.UserName,
		"reserved_at":   res.At,
	}

	var rows []domain.WishlistItem
	if err := c.do(ctx, http.MethodPatch, tableItems, q, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DeleteItem deletes an item scoped to its wishlist. Returns false when no
// matching row existed.
func (c *Client) DeleteItem(ctx context.Context, itemID, wishlistID int64) (bool, error) {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(itemID, 10))
	q.Set("wishlist_id", "eq."+strconv.FormatInt(wishlistID, 10))

	var rows []domain.WishlistItem
	if err := c.do(ctx, http.MethodDelete, tableItems, q, nil, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Ping verifies the record service is reachable. Used by readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("limit", "1")

	var rows []domain.Wishlist
	return c.do(ctx, http.MethodGet, tableWishlists, q, nil, &rows)
}

// do performs one request against a table endpoint and decodes the JSON
// response into out. Every failure is wrapped as an upstream error; callers
// never see transport details.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	endpoint := c.baseURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", table, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", table, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		// Writes must return the affected rows so callers can detect
		// lost conditional updates.
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return apperrors.Upstream(fmt.Errorf("%s %s: %w", method, table, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.Upstream(fmt.Errorf("read %s response: %w", table, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.ErrorContext(ctx, "record service error",
			slog.String("table", table),
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(data)),
		)
		return apperrors.Upstream(fmt.Errorf("%s %s: status %d", method, table, resp.StatusCode))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Upstream(fmt.Errorf("decode %s response: %w", table, err))
	}
	return nil
}
