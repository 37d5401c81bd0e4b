package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dukerupert/skuengine/internal/cache"
	"github.com/dukerupert/skuengine/internal/domain"
	"github.com/dukerupert/skuengine/internal/events"
	"github.com/dukerupert/skuengine/internal/repository"
	"github.com/dukerupert/skuengine/internal/sku"
	"github.com/dukerupert/skuengine/internal/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const pgUniqueViolation = "23505"

// SkuSettings holds the store's SKU generation settings.
type SkuSettings struct {
	Pattern      string
	Placeholders map[string]string
}

// SkuServiceDeps holds the optional collaborators of SkuService. Nil fields
// disable the corresponding concern.
type SkuServiceDeps struct {
	Cache     *cache.SkuCache
	Publisher events.Publisher
	Metrics   *telemetry.SkuMetrics
	Logger    *slog.Logger
}

// SkuService implements domain.SkuService using PostgreSQL.
type SkuService struct {
	repo      repository.Querier
	settings  SkuSettings
	cache     *cache.SkuCache
	publisher events.Publisher
	metrics   *telemetry.SkuMetrics
	logger    *slog.Logger
	validate  *validator.Validate
	generator *sku.Generator[int64]
}

// Compile-time checks that SkuService implements domain.SkuService and can
// serve as the generator's uniqueness lookup.
var (
	_ domain.SkuService = (*SkuService)(nil)
	_ sku.Lookup[int64] = (*SkuService)(nil)
)

// NewSkuService creates a new PostgreSQL-backed SKU service.
func NewSkuService(repo repository.Querier, settings SkuSettings, deps SkuServiceDeps) *SkuService {
	if settings.Pattern == "" {
		settings.Pattern = sku.DefaultPattern
	}
	if len(settings.Placeholders) == 0 {
		settings.Placeholders = sku.DefaultPlaceholders()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &SkuService{
		repo:      repo,
		settings:  settings,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	s.generator = sku.NewGenerator[int64](s, deps.Logger)
	return s
}

// =============================================================================
// LOOKUP
// =============================================================================

// SkuExists reports whether sku is used by any product of the store.
// A zero storeID checks across all stores.
func (s *SkuService) SkuExists(ctx context.Context, value string, storeID int64) (bool, error) {
	start := time.Now()
	exists, err := s.repo.SkuExists(ctx, repository.SkuExistsParams{
		Sku:     value,
		StoreID: pgInt8FromID(storeID),
	})
	s.metrics.ObserveLookup("exists", start, err)
	if err != nil {
		return false, s.internal(err, "sku.exists", "failed to check SKU", map[string]any{"sku": value})
	}
	return exists, nil
}

// Get retrieves a SKU by its ID.
func (s *SkuService) Get(ctx context.Context, id int64) (*domain.SkuRecord, error) {
	return s.GetBy(ctx, domain.SkuFilter{ProductSkuID: &id})
}

// GetBy retrieves the first SKU matching filter.
func (s *SkuService) GetBy(ctx context.Context, filter domain.SkuFilter) (*domain.SkuRecord, error) {
	filter.Limit = &domain.Limit{Count: 1}

	records, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrSkuNotFound
	}

	record := records[0]
	return &record, nil
}

// List returns SKUs matching filter ordered by SKU string.
func (s *SkuService) List(ctx context.Context, filter domain.SkuFilter) ([]domain.SkuRecord, error) {
	key := cache.Key("list", filter)
	if s.cache != nil {
		cached, ok := s.cache.Lists.Get(key)
		s.metrics.RecordCache("list", ok)
		if ok {
			return slices.Clone(cached), nil
		}
	}

	gen := s.cache.ListGeneration()

	params := repository.ListProductSkusParams{ProductSkuFilterParams: skuFilterParams(filter)}
	if filter.Limit != nil {
		params.Limit = pgtype.Int4{Int32: filter.Limit.Count, Valid: true}
		params.Offset = pgtype.Int4{Int32: filter.Limit.Offset, Valid: true}
	}

	start := time.Now()
	rows, err := s.repo.ListProductSkus(ctx, params)
	s.metrics.ObserveLookup("list", start, err)
	if err != nil {
		return nil, s.internal(err, "sku.list", "failed to list SKUs", nil)
	}

	records := make([]domain.SkuRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.SkuRecord{
			ID:            row.ProductSkuID,
			ProductID:     row.ProductID,
			CombinationID: row.CombinationID,
			Sku:           row.Sku,
			Price:         row.Price,
			Stock:         row.Stock,
			Status:        row.Status,
			Image:         row.Image,
			Title:         row.Title.String,
			Currency:      row.Currency.String,
			StoreID:       row.StoreID.Int64,
			Fields:        sku.FieldValues[int64](row.CombinationID),
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		}
	}

	if s.cache != nil {
		s.cache.Lists.SetAt(key, cache.ProductTag(filter), slices.Clone(records), gen)
	}

	return records, nil
}

// Count returns the number of SKUs matching filter. Limit is ignored.
func (s *SkuService) Count(ctx context.Context, filter domain.SkuFilter) (int64, error) {
	filter.Limit = nil

	key := cache.Key("count", filter)
	if s.cache != nil {
		cached, ok := s.cache.Counts.Get(key)
		s.metrics.RecordCache("count", ok)
		if ok {
			return cached, nil
		}
	}

	gen := s.cache.CountGeneration()

	start := time.Now()
	count, err := s.repo.CountProductSkus(ctx, skuFilterParams(filter))
	s.metrics.ObserveLookup("count", start, err)
	if err != nil {
		return 0, s.internal(err, "sku.count", "failed to count SKUs", nil)
	}

	if s.cache != nil {
		s.cache.Counts.SetAt(key, cache.ProductTag(filter), count, gen)
	}

	return count, nil
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Add stores a new SKU and returns its ID.
func (s *SkuService) Add(ctx context.Context, params domain.AddSkuParams) (int64, error) {
	const op = "sku.add"

	if err := s.validateParams(op, params); err != nil {
		return 0, err
	}

	if params.CombinationID != "" {
		prefix := strconv.FormatInt(params.ProductID, 10) + sku.ScopeSeparator
		if !strings.HasPrefix(params.CombinationID, prefix) {
			return 0, domain.WrapError(domain.ErrInvalidCombinationKey, domain.EINVALID, op,
				fmt.Sprintf("combination %q does not belong to product %d", params.CombinationID, params.ProductID))
		}
	}

	image := pgtype.Text{String: params.Image, Valid: params.Image != ""}

	id, err := s.repo.InsertProductSku(ctx, repository.InsertProductSkuParams{
		ProductID:     params.ProductID,
		CombinationID: params.CombinationID,
		Sku:           params.Sku,
		Price:         params.Price,
		Stock:         params.Stock,
		Status:        params.Status,
		Image:         image,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, domain.WrapError(domain.ErrDuplicateCombination, domain.ECONFLICT, op, domain.ErrDuplicateCombination.Message)
		}
		return 0, s.internal(err, op, "failed to add SKU", map[string]any{"product_id": params.ProductID})
	}

	s.cache.InvalidateProduct(params.ProductID)
	s.metrics.RecordWrite("add", 1)

	event := events.NewEvent(events.TypeSkuAdded, params.ProductID)
	event.ProductSkuID = id
	event.Sku = params.Sku
	s.publish(ctx, event)

	telemetry.AddBreadcrumb("sku", "sku added", map[string]any{
		"product_id":     params.ProductID,
		"product_sku_id": id,
	})
	s.logger.InfoContext(ctx, "sku added",
		slog.Int64("product_id", params.ProductID),
		slog.Int64("product_sku_id", id),
		slog.String("sku", params.Sku),
		slog.String("combination_id", params.CombinationID),
	)

	return id, nil
}

// Delete removes SKUs of a product. Returns whether any row was removed.
func (s *SkuService) Delete(ctx context.Context, productID int64, opts domain.DeleteSkuOptions) (bool, error) {
	const op = "sku.delete"

	if productID <= 0 {
		return false, domain.NewValidationError(op, "product_id", "product_id must be greater than 0")
	}
	if opts.Combinations && opts.Base {
		return false, domain.Invalid(op, "cannot restrict deletion to both combinations and base")
	}

	rows, err := s.repo.DeleteProductSkus(ctx, repository.DeleteProductSkusParams{
		ProductID:        productID,
		OnlyCombinations: opts.Combinations,
		OnlyBase:         opts.Base,
	})
	if err != nil {
		return false, s.internal(err, op, "failed to delete SKUs", map[string]any{"product_id": productID})
	}

	s.cache.InvalidateProduct(productID)
	s.metrics.RecordWrite("delete", rows)

	if rows > 0 {
		event := events.NewEvent(events.TypeSkuDeleted, productID)
		event.Rows = rows
		s.publish(ctx, event)
	}

	s.logger.InfoContext(ctx, "skus deleted",
		slog.Int64("product_id", productID),
		slog.Int64("rows", rows),
		slog.Bool("combinations", opts.Combinations),
		slog.Bool("base", opts.Base),
	)

	return rows > 0, nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate expands pattern with values from record and makes the result
// unique within the store.
func (s *SkuService) Generate(ctx context.Context, pattern string, placeholders map[string]string, record map[string]any, storeID int64) (string, error) {
	value, suffix, err := s.generator.Unique(ctx, sku.Expand(pattern, placeholders, record), storeID)
	if err != nil {
		return "", err
	}

	s.metrics.RecordGenerated(suffix)
	if suffix > 0 {
		s.logger.DebugContext(ctx, "sku collision resolved",
			slog.String("sku", value),
			slog.Int("suffix", suffix),
			slog.Int64("store_id", storeID),
		)
	}

	return value, nil
}

// Pattern returns the configured SKU pattern.
func (s *SkuService) Pattern() string {
	return s.settings.Pattern
}

// Placeholders returns a copy of the configured pattern placeholders.
func (s *SkuService) Placeholders() map[string]string {
	return maps.Clone(s.settings.Placeholders)
}

// =============================================================================
// VARIANT SELECTION
// =============================================================================

// LoadProduct assembles a product and its combinations for selection.
func (s *SkuService) LoadProduct(ctx context.Context, productID int64) (*sku.Product[int64], error) {
	const op = "sku.load_product"

	start := time.Now()
	row, err := s.repo.GetProduct(ctx, productID)
	s.metrics.ObserveLookup("product", start, ignoreNoRows(err))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, s.internal(err, op, "failed to load product", map[string]any{"product_id": productID})
	}

	start = time.Now()
	rows, err := s.repo.ListProductCombinations(ctx, productID)
	s.metrics.ObserveLookup("combinations", start, err)
	if err != nil {
		return nil, s.internal(err, op, "failed to load combinations", map[string]any{"product_id": productID})
	}

	product := &sku.Product[int64]{
		ID:           row.ProductID,
		SKU:          row.Sku,
		Price:        row.Price,
		Currency:     row.Currency,
		Status:       row.Status,
		Subtract:     row.Subtract,
		Stock:        int(row.Stock),
		Combinations: make(map[string]sku.Combination[int64], len(rows)),
	}
	for _, c := range rows {
		product.Combinations[c.CombinationID] = sku.Combination[int64]{
			Key:      c.CombinationID,
			Fields:   sku.FieldValues[int64](c.CombinationID),
			SKU:      c.Sku,
			Price:    c.Price,
			Currency: row.Currency,
			Stock:    int(c.Stock),
			Status:   c.Status,
			Image:    c.Image.String,
		}
	}

	return product, nil
}

// SelectCombination loads a product and resolves the selected field values.
func (s *SkuService) SelectCombination(ctx context.Context, productID int64, fieldValueIDs []int64) (*sku.Selection[int64], error) {
	product, err := s.LoadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	selection := sku.Select(*product, fieldValueIDs)
	s.metrics.RecordSelection(selection.Outcome())

	s.logger.DebugContext(ctx, "combination selected",
		slog.Int64("product_id", productID),
		slog.Any("field_values", fieldValueIDs),
		slog.String("outcome", selection.Outcome()),
		slog.String("sku", selection.SKU),
	)

	return &selection, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *SkuService) validateParams(op string, params domain.AddSkuParams) error {
	err := s.validate.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Invalid(op, err.Error())
	}

	ve := &domain.ValidationError{Op: op, Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := snakeCase(fe.Field())
		ve.Fields[field] = validationMessage(field, fe)
	}
	return ve
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be less than %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// snakeCase converts a Go field name such as ProductID to product_id.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SkuService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish sku event",
			slog.String("type", event.Type),
			slog.Int64("product_id", event.ProductID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *SkuService) internal(err error, op, message string, extras map[string]any) error {
	telemetry.CaptureError(err, op, extras)
	return domain.Internal(err, op, message)
}

func ignoreNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

func skuFilterParams(filter domain.SkuFilter) repository.ProductSkuFilterParams {
	return repository.ProductSkuFilterParams{
		ProductSkuID:  pgInt8FromPtr(filter.ProductSkuID),
		ProductID:     pgInt8FromPtr(filter.ProductID),
		CombinationID: pgTextFromPtr(filter.CombinationID),
		Sku:           pgTextFromPtr(filter.Sku),
		TitleSku:      pgTextFromPtr(filter.TitleSku),
		StoreID:       pgInt8FromPtr(filter.StoreID),
		Status:        pgBoolFromPtr(filter.Status),
	}
}
