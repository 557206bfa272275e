// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

type Handler struct {
	service Service
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewHandler exposes the service over HTTP. Purchases are throttled by
// limiter; a nil limiter disables throttling.
func NewHandler(service Service, limiter *rate.Limiter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, limiter: limiter, logger: logger}
}

// Routes returns the item routes, meant to be mounted under /items.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleListItems)
	r.Post("/", h.handleAddItem)
	r.Post("/prune", h.handlePrune)
	r.Get("/inventory", h.handleInventory)
	r.Get("/{id}", h.handleGetItem)
	r.With(h.throttle).Post("/{id}/purchase", h.handlePurchase)
	return r
}

// ItemRequest is the body of POST /items. Stock applies to physical items,
// Format to digital ones.
type ItemRequest struct {
	Kind          Kind            `json:"kind"`
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	YearPublished int             `json:"year_published"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock,omitempty"`
	Format        string          `json:"format,omitempty"`
}

func (req ItemRequest) toItem() (Item, error) {
	switch req.Kind {
	case KindPhysical:
		return NewPhysicalItem(req.ID, req.Title, req.Author, req.YearPublished, req.Price, req.Stock)
	case KindDigital:
		return NewDigitalItem(req.ID, req.Title, req.Author, req.YearPublished, req.Price, req.Format)
	case KindDisplay:
		return NewDisplayItem(req.ID, req.Title, req.Author, req.YearPublished, req.Price)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidItem, req.Kind)
	}
}

// ItemResponse is the JSON form of an item.
type ItemResponse struct {
	Kind          Kind            `json:"kind"`
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	YearPublished int             `json:"year_published"`
	Price         decimal.Decimal `json:"price"`
	Saleable      bool            `json:"saleable"`
	Stock         *int            `json:"stock,omitempty"`
	Format        string          `json:"format,omitempty"`
}

// NewItemResponse converts an item to its JSON form.
func NewItemResponse(item Item) ItemResponse {
	resp := ItemResponse{
		Kind:          item.Kind(),
		ID:            item.ID(),
		Title:         item.Title(),
		Author:        item.Author(),
		YearPublished: item.YearPublished(),
		Price:         item.Price(),
		Saleable:      item.Saleable(),
	}
	if s, ok := item.(interface{ Stock() int }); ok {
		stock := s.Stock()
		resp.Stock = &stock
	}
	if f, ok := item.(interface{ Format() string }); ok {
		resp.Format = f.Format()
	}
	return resp
}

func newItemResponses(items []Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewItemResponse(item))
	}
	return out
}

// PurchaseRequest is the body of POST /items/{id}/purchase.
type PurchaseRequest struct {
	Quantity int     `json:"quantity"`
	Email    *string `json:"email,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// PurchaseResponse is returned for a completed purchase.
type PurchaseResponse struct {
	PurchaseID uuid.UUID       `json:"purchase_id"`
	ItemID     string          `json:"item_id"`
	Quantity   int             `json:"quantity"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

// PruneRequest is the body of POST /items/prune.
type PruneRequest struct {
	Years *int `json:"years"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := req.toItem()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid item", err.Error())
		return
	}

	h.service.AddItem(r.Context(), item)
	writeJSON(w, http.StatusCreated, NewItemResponse(item))
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newItemResponses(h.service.ListAll(r.Context())))
}

// handleInventory renders the same text report as Service.Inventory.
func (h *Handler) handleInventory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, h.service.Inventory(r.Context()))
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, NewItemResponse(item))
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	amount, err := h.service.Purchase(r.Context(), id, req.Quantity, req.Email, req.Address)
	if err != nil {
		writeError(w, statusFor(err), err.Error(), Outcome(err))
		return
	}

	writeJSON(w, http.StatusOK, PurchaseResponse{
		PurchaseID: uuid.New(),
		ItemID:     id,
		Quantity:   req.Quantity,
		AmountPaid: amount,
	})
}

func (h *Handler) handlePrune(w http.ResponseWriter, r *http.Request) {
	var req PruneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Years == nil {
		writeError(w, http.StatusUnprocessableEntity, "years is required", "")
		return
	}

	removed := h.service.RemoveOutdated(r.Context(), *req.Years)
	writeJSON(w, http.StatusOK, newItemResponses(removed))
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter != nil && !h.limiter.Allow() {
			h.logger.WarnContext(r.Context(), "purchase rate limit exceeded", "path", r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotForSale), errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrMissingAddress), errors.Is(err, ErrMissingEmail),
		errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidItem):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
