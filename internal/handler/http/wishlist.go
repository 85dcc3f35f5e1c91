package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/auth"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
	"github.com/mgolovanova35-netizen/wishlist-backend/internal/service"
	apperrors "github.com/mgolovanova35-netizen/wishlist-backend/pkg/errors"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/httputil"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/logger"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/validator"
)

// WishlistHandler serves every wishlist API operation. The session payload
// travels in the request body (the mini-app SDK puts it there), so
// verification happens per handler rather than in header middleware.
type WishlistHandler struct {
	verifier *auth.Verifier
	service  *service.WishlistService
	logger   *slog.Logger
}

// NewWishlistHandler creates the handler.
func NewWishlistHandler(verifier *auth.Verifier, svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{verifier: verifier, service: svc, logger: logger}
}

// --- Request DTOs ---

// ListItemsRequest is the body of POST /api/items.
type ListItemsRequest struct {
	InitData string `json:"initData"`
}

// AddItemRequest is the body of POST /api/items/add.
type AddItemRequest struct {
	InitData string  `json:"initData"`
	URL      string  `json:"url" validate:"required,max=2048"`
	Title    *string `json:"title" validate:"omitempty,max=500"`
	Image    *string `json:"image" validate:"omitempty,max=2048"`
	Note     *string `json:"note" validate:"omitempty,max=1000"`
	Price    *string `json:"price" validate:"omitempty,max=100"`
}

// ParseLinkRequest is the body of POST /api/parse.
type ParseLinkRequest struct {
	InitData string `json:"initData"`
	URL      string `json:"url" validate:"required,max=2048"`
}

// ReserveItemRequest is the body of POST /api/reserve.
type ReserveItemRequest struct {
	InitData string `json:"initData"`
	ItemID   int64  `json:"item_id" validate:"required"`
}

// DeleteItemRequest is the body of POST /api/items/delete.
type DeleteItemRequest struct {
	InitData string `json:"initData"`
	ItemID   int64  `json:"item_id" validate:"required"`
}

// --- Response DTOs ---

// ListItemsResponse is the payload of a successful list call.
type ListItemsResponse struct {
	Success   bool                  `json:"success"`
	OwnerID   int64                 `json:"owner_id"`
	OwnerName string                `json:"owner_name"`
	Items     []domain.WishlistItem `json:"items"`
}

// ParseLinkResponse is the payload of a successful parse call.
type ParseLinkResponse struct {
	Success bool    `json:"success"`
	Title   *string `json:"title"`
	Image   *string `json:"image"`
	Price   *string `json:"price"`
	URL     string  `json:"url"`
}

// OKResponse is the payload of operations with no data to return.
type OKResponse struct {
	Success bool `json:"success"`
}

// --- Handlers ---

// ListItems handles POST /api/items.
func (h *WishlistHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	var req ListItemsRequest
	user, ok := h.authenticate(w, r, &req, func() string { return req.InitData })
	if !ok {
		return
	}

	wl, items, err := h.service.ListItems(r.Context(), user)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if items == nil {
		items = []domain.WishlistItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListItemsResponse{
		Success:   true,
		OwnerID:   wl.OwnerID,
		OwnerName: wl.OwnerName,
		Items:     items,
	})
}

// AddItem handles POST /api/items/add.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	user, ok := h.authenticate(w, r, &req, func() string { return req.InitData })
	if !ok {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteFailure(w, http.StatusOK, err.Error())
		return
	}

	_, err := h.service.AddItem(r.Context(), user, service.AddItemInput{
		URL:   req.URL,
		Title: req.Title,
		Image: req.Image,
		Note:  req.Note,
		Price: req.Price,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, OKResponse{Success: true})
}

// ParseLink handles POST /api/parse. Extraction failures collapse to one
// generic message with HTTP 200; the cause is logged, not returned.
func (h *WishlistHandler) ParseLink(w http.ResponseWriter, r *http.Request) {
	var req ParseLinkRequest
	if _, ok := h.authenticate(w, r, &req, func() string { return req.InitData }); !ok {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteFailure(w, http.StatusOK, err.Error())
		return
	}

	meta, err := h.service.ParseLink(r.Context(), req.URL)
	if err != nil {
		logger.FromContext(r.Context()).WarnContext(r.Context(), "parse link failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()),
		)
		httputil.WriteFailure(w, http.StatusOK, "could not process the link")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ParseLinkResponse{
		Success: true,
		Title:   meta.Title,
		Image:   meta.Image,
		Price:   meta.Price,
		URL:     req.URL,
	})
}

// ReserveItem handles POST /api/reserve.
func (h *WishlistHandler) ReserveItem(w http.ResponseWriter, r *http.Request) {
	var req ReserveItemRequest
	user, ok := h.authenticate(w, r, &req, func() string { return req.InitData })
	if !ok {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteFailure(w, http.StatusOK, err.Error())
		return
	}

	err := h.service.ReserveItem(r.Context(), user, req.ItemID)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, OKResponse{Success: true})
	case errors.Is(err, apperrors.ErrAlreadyReserved), errors.Is(err, apperrors.ErrNotFound):
		// Nonexistent and already-reserved are deliberately
		// indistinguishable to the caller.
		httputil.WriteFailure(w, http.StatusOK, "item is already reserved")
	default:
		httputil.WriteError(w, r, err, h.logger)
	}
}

// DeleteItem handles POST /api/items/delete. Owner-only: the store delete is
// scoped to the caller's wishlist, so foreign items report not found.
func (h *WishlistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	var req DeleteItemRequest
	user, ok := h.authenticate(w, r, &req, func() string { return req.InitData })
	if !ok {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteFailure(w, http.StatusOK, err.Error())
		return
	}

	err := h.service.DeleteItem(r.Context(), user, req.ItemID)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, OKResponse{Success: true})
	case errors.Is(err, apperrors.ErrNotFound):
		httputil.WriteFailure(w, http.StatusOK, "item not found")
	default:
		httputil.WriteError(w, r, err, h.logger)
	}
}

// authenticate decodes the request body and verifies its session payload.
// On failure it writes the response (400 for an unreadable body, 401 for a
// bad session with one generic message) and returns ok=false.
func (h *WishlistHandler) authenticate(w http.ResponseWriter, r *http.Request, dst any, initData func() string) (*auth.User, bool) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	user, err := h.verifier.Verify(initData())
	if err != nil {
		httputil.WriteFailure(w, http.StatusUnauthorized, "invalid session")
		return nil, false
	}

	// Enrich the request-scoped logger with the verified identity.
	ctx := logger.WithUserID(r.Context(), strconv.FormatInt(user.ID, 10))
	*r = *r.WithContext(ctx)

	return user, true
}
