package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/skuengine/internal/domain"
	"github.com/dukerupert/skuengine/internal/sku"
)

// DefaultPageSize is used when a listing request has no limit.
const DefaultPageSize = 50

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// SkuHandler serves SKU lookups, writes, generation and variant selection.
type SkuHandler struct {
	service domain.SkuService
	logger  *slog.Logger
}

// NewSkuHandler creates a new SKU handler.
func NewSkuHandler(service domain.SkuService, logger *slog.Logger) *SkuHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SkuHandler{service: service, logger: logger}
}

type skuResponse struct {
	ID            int64      `json:"id"`
	ProductID     int64      `json:"product_id"`
	CombinationID string     `json:"combination_id"`
	Sku           string     `json:"sku"`
	Price         int64      `json:"price"`
	Currency      string     `json:"currency,omitempty"`
	Stock         int32      `json:"stock"`
	Status        bool       `json:"status"`
	Image         string     `json:"image,omitempty"`
	Title         string     `json:"title,omitempty"`
	StoreID       int64      `json:"store_id,omitempty"`
	Fields        []int64    `json:"fields"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func newSkuResponse(r domain.SkuRecord) skuResponse {
	resp := skuResponse{
		ID:            r.ID,
		ProductID:     r.ProductID,
		CombinationID: r.CombinationID,
		Sku:           r.Sku,
		Price:         r.Price,
		Currency:      r.Currency,
		Stock:         r.Stock,
		Status:        r.Status,
		Image:         r.Image.String,
		Title:         r.Title,
		StoreID:       r.StoreID,
		Fields:        r.Fields,
	}
	if resp.Fields == nil {
		resp.Fields = []int64{}
	}
	if r.UpdatedAt.Valid {
		t := r.UpdatedAt.Time
		resp.UpdatedAt = &t
	}
	return resp
}

// List handles GET /skus
//
// Query parameters: product_id, store_id, combination_id, sku, q (title or
// SKU substring), status, offset, limit.
func (h *SkuHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSkuFilter(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	records, err := h.service.List(r.Context(), filter)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	total, err := h.service.Count(r.Context(), filter)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	items := make([]skuResponse, len(records))
	for i, rec := range records {
		items[i] = newSkuResponse(rec)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":  items,
		"total":  total,
		"offset": filter.Limit.Offset,
		"limit":  filter.Limit.Count,
	})
}

// Get handles GET /skus/{id}
func (h *SkuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "sku.get")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSkuResponse(*rec))
}

type addSkuRequest struct {
	ProductID     int64   `json:"product_id"`
	FieldValues   []int64 `json:"field_values"` // encoded into combination_id when set
	CombinationID string  `json:"combination_id"`
	Sku           string  `json:"sku"`
	Price         int64   `json:"price"`
	Stock         int32   `json:"stock"`
	Status        bool    `json:"status"`
	Image         string  `json:"image"`
}

// Add handles POST /skus
func (h *SkuHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addSkuRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("sku.add", "invalid JSON body"))
		return
	}

	combinationID := req.CombinationID
	if combinationID == "" && len(req.FieldValues) > 0 {
		combinationID = sku.CombinationKey(req.FieldValues, req.ProductID)
	}

	id, err := h.service.Add(r.Context(), domain.AddSkuParams{
		ProductID:     req.ProductID,
		CombinationID: combinationID,
		Sku:           req.Sku,
		Price:         req.Price,
		Stock:         req.Stock,
		Status:        req.Status,
		Image:         req.Image,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "combination_id": combinationID})
}

// Delete handles DELETE /products/{id}/skus?only=combinations|base
func (h *SkuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id", "sku.delete")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var opts domain.DeleteSkuOptions
	switch only := r.URL.Query().Get("only"); only {
	case "":
	case "combinations":
		opts.Combinations = true
	case "base":
		opts.Base = true
	default:
		ErrorResponse(w, r, h.logger, domain.Invalid("sku.delete", "only must be combinations or base"))
		return
	}

	removed, err := h.service.Delete(r.Context(), productID, opts)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

type generateRequest struct {
	Pattern      string            `json:"pattern"`
	Placeholders map[string]string `json:"placeholders"`
	StoreID      int64             `json:"store_id"`
	Record       map[string]any    `json:"record"`
}

// Generate handles POST /products/{id}/skus/generate
//
// Pattern and placeholders default to the configured settings. The record
// always carries product_id and store_id.
func (h *SkuHandler) Generate(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id", "sku.generate")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req generateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("sku.generate", "invalid JSON body"))
			return
		}
	}

	if req.Pattern == "" {
		req.Pattern = h.service.Pattern()
	}
	if len(req.Placeholders) == 0 {
		req.Placeholders = h.service.Placeholders()
	}
	if req.Record == nil {
		req.Record = make(map[string]any)
	}
	req.Record["product_id"] = productID
	req.Record["store_id"] = req.StoreID

	value, err := h.service.Generate(r.Context(), req.Pattern, req.Placeholders, req.Record, req.StoreID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"sku": value})
}

type selectionResponse struct {
	SKU         string       `json:"sku"`
	Price       int64        `json:"price"`
	Currency    string       `json:"currency"`
	CartAccess  bool         `json:"cart_access"`
	Severity    sku.Severity `json:"severity"`
	Message     string       `json:"message"`
	NotMatched  bool         `json:"not_matched,omitempty"`
	Related     []int64      `json:"related,omitempty"`
	Combination string       `json:"combination_id,omitempty"`
	Image       string       `json:"image,omitempty"`
}

// Selection handles GET /products/{id}/selection?values=1,2,3
func (h *SkuHandler) Selection(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id", "sku.select")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	values, err := parseIDList(r.URL.Query().Get("values"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("sku.select", "values must be a comma-separated list of IDs"))
		return
	}

	sel, err := h.service.SelectCombination(r.Context(), productID, values)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := selectionResponse{
		SKU:        sel.SKU,
		Price:      sel.Price,
		Currency:   sel.Currency,
		CartAccess: sel.CartAccess,
		Severity:   sel.Severity,
		Message:    sel.Message,
		NotMatched: sel.NotMatched,
		Related:    sel.Related,
	}
	if sel.Combination != nil {
		resp.Combination = sel.Combination.Key
		resp.Image = sel.Combination.Image
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	return dec.Decode(v)
}

func pathID(r *http.Request, name, op string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(op, name+" must be a positive integer")
	}
	return id, nil
}

func parseIDList(value string) ([]int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseSkuFilter(r *http.Request) (domain.SkuFilter, error) {
	const op = "sku.list"
	q := r.URL.Query()
	var filter domain.SkuFilter

	ints := []struct {
		name string
		dst  **int64
	}{
		{"product_id", &filter.ProductID},
		{"store_id", &filter.StoreID},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return filter, domain.NewValidationError(op, p.name, p.name+" must be an integer")
			}
			*p.dst = &n
		}
	}

	strs := []struct {
		name string
		dst  **string
	}{
		{"combination_id", &filter.CombinationID},
		{"sku", &filter.Sku},
		{"q", &filter.TitleSku},
	}
	for _, p := range strs {
		if v := q.Get(p.name); v != "" {
			*p.dst = &v
		}
	}

	if v := q.Get("status"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, domain.NewValidationError(op, "status", "status must be a boolean")
		}
		filter.Status = &b
	}

	limit := &domain.Limit{Count: DefaultPageSize}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return filter, domain.NewValidationError(op, "offset", "offset must be a non-negative integer")
		}
		limit.Offset = int32(n)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return filter, domain.NewValidationError(op, "limit", "limit must be a positive integer")
		}
		limit.Count = int32(n)
	}
	filter.Limit = limit

	return filter, nil
}
