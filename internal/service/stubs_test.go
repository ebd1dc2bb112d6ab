package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/infra"
	"github.com/wukjhc-create/elta-crm-sub009/internal/model"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"
	"github.com/wukjhc-create/elta-crm-sub009/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory SupplierProductRepository.
type stubProductRepo struct {
	products map[uuid.UUID]*model.SupplierProduct
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.SupplierProduct)}
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SupplierProduct, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.SupplierProduct, error) {
	var out []model.SupplierProduct
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Search(_ context.Context, term string, limit int) ([]model.SupplierProduct, error) {
	needle := strings.ToLower(term)
	var out []model.SupplierProduct
	for _, p := range r.products {
		if !p.Active || p.Supplier == nil || !p.Supplier.Active {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.SKU), needle) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SKU < out[j].SKU
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubProductRepo) MarkSynced(_ context.Context, id uuid.UUID, snap model.PriceSnapshot) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.BaseCostPrice = snap.CostPrice
	p.Available = snap.Available
	t := snap.FetchedAt
	p.LastSyncedAt = &t
	return nil
}

var _ repository.SupplierProductRepository = (*stubProductRepo)(nil)

// stubCustomerRepo holds customers and their pricing layers keyed by ID pair.
type stubCustomerRepo struct {
	customers  map[uuid.UUID]*model.Customer
	tiers      map[string]*model.CustomerTier
	overrides  map[string]*model.CustomerProductOverride
	agreements map[string]*model.CustomerAgreement
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{
		customers:  make(map[uuid.UUID]*model.Customer),
		tiers:      make(map[string]*model.CustomerTier),
		overrides:  make(map[string]*model.CustomerProductOverride),
		agreements: make(map[string]*model.CustomerAgreement),
	}
}

func pairKey(a, b uuid.UUID) string { return a.String() + "/" + b.String() }

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) FindTierByName(_ context.Context, name string) (*model.CustomerTier, error) {
	t, ok := r.tiers[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubCustomerRepo) FindOverride(_ context.Context, customerID, supplierProductID uuid.UUID) (*model.CustomerProductOverride, error) {
	o, ok := r.overrides[pairKey(customerID, supplierProductID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubCustomerRepo) FindAgreement(_ context.Context, customerID, supplierID uuid.UUID) (*model.CustomerAgreement, error) {
	a, ok := r.agreements[pairKey(customerID, supplierID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// stubBracketRepo serves a fixed volume discount table.
type stubBracketRepo struct {
	brackets []model.VolumeBracket
	err      error
}

func (r *stubBracketRepo) ListOrdered(_ context.Context) ([]model.VolumeBracket, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.brackets, nil
}

var _ repository.VolumeBracketRepository = (*stubBracketRepo)(nil)

// stubSyncLogRepo records appended sync attempts in memory.
type stubSyncLogRepo struct {
	entries []model.SupplierSyncLog
}

func (r *stubSyncLogRepo) Append(_ context.Context, entry *model.SupplierSyncLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubSyncLogRepo) ListRecent(_ context.Context, supplierID uuid.UUID, limit int) ([]model.SupplierSyncLog, error) {
	var out []model.SupplierSyncLog
	for _, e := range r.entries {
		if e.SupplierID == supplierID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ repository.SyncLogRepository = (*stubSyncLogRepo)(nil)

// stubCacheRepo is an in-memory PriceCacheRepository keyed by product ID.
type stubCacheRepo struct {
	rows    map[uuid.UUID]*model.CachedPrice
	upserts int
	findErr error
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{rows: make(map[uuid.UUID]*model.CachedPrice)}
}

func (r *stubCacheRepo) FindByProductID(_ context.Context, supplierProductID uuid.UUID) (*model.CachedPrice, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	row, ok := r.rows[supplierProductID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *stubCacheRepo) FindByProductIDs(_ context.Context, supplierProductIDs []uuid.UUID) ([]model.CachedPrice, error) {
	var out []model.CachedPrice
	for _, id := range supplierProductIDs {
		if row, ok := r.rows[id]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *stubCacheRepo) Upsert(_ context.Context, rec *model.CachedPrice) error {
	if existing, ok := r.rows[rec.SupplierProductID]; ok {
		rec.ID = existing.ID
	} else if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.rows[rec.SupplierProductID] = rec
	r.upserts++
	return nil
}

func (r *stubCacheRepo) MarkStaleByProductIDs(_ context.Context, supplierProductIDs []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range supplierProductIDs {
		if row, ok := r.rows[id]; ok && !row.IsStale {
			row.IsStale = true
			n++
		}
	}
	return n, nil
}

func (r *stubCacheRepo) MarkStaleBySupplier(_ context.Context, supplierID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if row.SupplierID == supplierID && !row.IsStale {
			row.IsStale = true
			n++
		}
	}
	return n, nil
}

func (r *stubCacheRepo) MarkStaleOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if !row.IsStale && row.CachedAt.Before(cutoff) {
			row.IsStale = true
			n++
		}
	}
	return n, nil
}

func (r *stubCacheRepo) ListStale(_ context.Context, limit int) ([]model.CachedPrice, error) {
	var out []model.CachedPrice
	for _, row := range r.rows {
		if row.IsStale {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CachedAt.Before(out[j].CachedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubCacheRepo) CountBySupplier(_ context.Context, supplierID uuid.UUID) (int64, int64, error) {
	var total, stale int64
	for _, row := range r.rows {
		if row.SupplierID != supplierID {
			continue
		}
		total++
		if row.IsStale {
			stale++
		}
	}
	return total, stale, nil
}

var _ repository.PriceCacheRepository = (*stubCacheRepo)(nil)

// stubSupplierRepo is an in-memory SupplierRepository.
type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) ListActive(_ context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range r.suppliers {
		if s.Active {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

// stubAcceptedRepo stores accepted prices in memory, newest first on read.
type stubAcceptedRepo struct {
	rows []model.AcceptedPrice
}

func (r *stubAcceptedRepo) Record(_ context.Context, rec *model.AcceptedPrice) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, *rec)
	return nil
}

func (r *stubAcceptedRepo) byProduct(supplierProductID uuid.UUID) []model.AcceptedPrice {
	var out []model.AcceptedPrice
	for _, rec := range r.rows {
		if rec.SupplierProductID == supplierProductID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubAcceptedRepo) ListByProduct(_ context.Context, supplierProductID uuid.UUID, page, limit int) ([]model.AcceptedPrice, int64, error) {
	all := r.byProduct(supplierProductID)
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *stubAcceptedRepo) RecentPrices(_ context.Context, supplierProductID uuid.UUID, limit int) ([]decimal.Decimal, error) {
	all := r.byProduct(supplierProductID)
	if len(all) > limit {
		all = all[:limit]
	}
	prices := make([]decimal.Decimal, 0, len(all))
	for _, rec := range all {
		prices = append(prices, rec.Price)
	}
	return prices, nil
}

var _ repository.AcceptedPriceRepository = (*stubAcceptedRepo)(nil)

// stubSupplierClient answers price lookups per SKU. SKUs without a quote or
// error entry fail, which pushes the resolver onto its fallback chain.
type stubSupplierClient struct {
	quotes map[string]*infra.SupplierPriceQuote
	errs   map[string]error
	delay  time.Duration
	calls  int
	onCall func()
}

func newStubSupplierClient() *stubSupplierClient {
	return &stubSupplierClient{
		quotes: make(map[string]*infra.SupplierPriceQuote),
		errs:   make(map[string]error),
	}
}

func (c *stubSupplierClient) FetchPrice(ctx context.Context, _ *model.Supplier, sku string) (*infra.SupplierPriceQuote, error) {
	c.calls++
	if c.onCall != nil {
		c.onCall()
	}
	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.delay):
		}
	}
	if err, ok := c.errs[sku]; ok {
		return nil, err
	}
	if q, ok := c.quotes[sku]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

var _ infra.SupplierPriceClient = (*stubSupplierClient)(nil)

// stubResolver returns canned resolutions per product. Map reads only, so
// the comparison fan-out can call it concurrently.
type stubResolver struct {
	responses map[uuid.UUID]*dto.ResolvedPriceResponse
	errs      map[uuid.UUID]error
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		responses: make(map[uuid.UUID]*dto.ResolvedPriceResponse),
		errs:      make(map[uuid.UUID]error),
	}
}

func (r *stubResolver) Resolve(_ context.Context, _ uuid.UUID, supplierProductID uuid.UUID, _ int) (*dto.ResolvedPriceResponse, error) {
	if err, ok := r.errs[supplierProductID]; ok {
		return nil, err
	}
	if resp, ok := r.responses[supplierProductID]; ok {
		return resp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

var _ service.PriceResolverService = (*stubResolver)(nil)

// ── Seed helpers ──────────────────────────────────────────────────────────────

func seedSupplier(name, code string) *model.Supplier {
	return &model.Supplier{ID: uuid.New(), Code: code, Name: name, AccountRef: code, Active: true}
}

func seedProduct(repo *stubProductRepo, supplier *model.Supplier, sku, name string, cost float64, synced bool) *model.SupplierProduct {
	p := &model.SupplierProduct{
		ID:            uuid.New(),
		SupplierID:    supplier.ID,
		SKU:           sku,
		Name:          name,
		BaseCostPrice: decimal.NewFromFloat(cost),
		Available:     true,
		Active:        true,
		Supplier:      supplier,
	}
	if synced {
		t := time.Now().Add(-2 * time.Hour)
		p.LastSyncedAt = &t
	}
	repo.products[p.ID] = p
	return p
}

func seedCached(repo *stubCacheRepo, p *model.SupplierProduct, cost float64, age time.Duration, stale bool) *model.CachedPrice {
	row := &model.CachedPrice{
		ID:                uuid.New(),
		SupplierProductID: p.ID,
		SupplierID:        p.SupplierID,
		CostPrice:         decimal.NewFromFloat(cost),
		Available:         true,
		CachedAt:          time.Now().Add(-age),
		Source:            model.CacheSourceAPI,
		FallbackPriority:  2,
		IsStale:           stale,
	}
	repo.rows[p.ID] = row
	return row
}

func seedCustomer(repo *stubCustomerRepo, name string, tier *model.CustomerTier) *model.Customer {
	c := &model.Customer{ID: uuid.New(), Name: name, Active: true, Tier: tier}
	if tier != nil {
		c.TierID = &tier.ID
		repo.tiers[tier.Name] = tier
	}
	repo.customers[c.ID] = c
	return c
}

func seedTier(name string, pct float64) *model.CustomerTier {
	return &model.CustomerTier{ID: uuid.New(), Name: name, DiscountPct: decimal.NewFromFloat(pct)}
}

func seedAgreement(repo *stubCustomerRepo, customerID, supplierID uuid.UUID, pct float64) *model.CustomerAgreement {
	a := &model.CustomerAgreement{
		ID:          uuid.New(),
		CustomerID:  customerID,
		SupplierID:  supplierID,
		DiscountPct: decimal.NewFromFloat(pct),
	}
	repo.agreements[pairKey(customerID, supplierID)] = a
	return a
}

func seedOverride(repo *stubCustomerRepo, customerID, productID uuid.UUID, unitPrice, discountPct *decimal.Decimal) *model.CustomerProductOverride {
	o := &model.CustomerProductOverride{
		ID:                uuid.New(),
		CustomerID:        customerID,
		SupplierProductID: productID,
		UnitPrice:         unitPrice,
		DiscountPct:       discountPct,
		Source:            model.CacheSourceManual,
	}
	repo.overrides[pairKey(customerID, productID)] = o
	return o
}

func seedSyncLog(repo *stubSyncLogRepo, supplierID uuid.UUID, status model.SyncStatus, durationMs int64, at time.Time) {
	repo.entries = append(repo.entries, model.SupplierSyncLog{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Status:     status,
		DurationMs: durationMs,
		CreatedAt:  at,
	})
}

// defaultBrackets mirrors the seeded production table.
func defaultBrackets() []model.VolumeBracket {
	return []model.VolumeBracket{
		{ID: uuid.New(), MinQty: 1, MaxQty: intPtr(9), DiscountPct: decimal.Zero},
		{ID: uuid.New(), MinQty: 10, MaxQty: intPtr(24), DiscountPct: decimal.NewFromFloat(2)},
		{ID: uuid.New(), MinQty: 25, MaxQty: intPtr(49), DiscountPct: decimal.NewFromFloat(3.5)},
		{ID: uuid.New(), MinQty: 50, MaxQty: intPtr(99), DiscountPct: decimal.NewFromFloat(5)},
		{ID: uuid.New(), MinQty: 100, MaxQty: nil, DiscountPct: decimal.NewFromFloat(7.5)},
	}
}

func quoteOf(cost float64) *infra.SupplierPriceQuote {
	return &infra.SupplierPriceQuote{CostPrice: decimal.NewFromFloat(cost), Available: true}
}

func intPtr(v int) *int { return &v }

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

// ── Service builders ──────────────────────────────────────────────────────────

// houseMarginPct is the default sale margin resolvers under test quote with.
const houseMarginPct = 25.0

// resolverStubs bundles every dependency of a resolver under test.
type resolverStubs struct {
	products  *stubProductRepo
	customers *stubCustomerRepo
	brackets  *stubBracketRepo
	syncLogs  *stubSyncLogRepo
	cacheRepo *stubCacheRepo
	client    *stubSupplierClient
}

// buildResolver wires a resolver against in-memory stubs with a real cache
// service in the middle, so cache writes land where the tests can see them.
func buildResolver(timeout time.Duration) (service.PriceResolverService, *resolverStubs) {
	st := &resolverStubs{
		products:  newStubProductRepo(),
		customers: newStubCustomerRepo(),
		brackets:  &stubBracketRepo{brackets: defaultBrackets()},
		syncLogs:  &stubSyncLogRepo{},
		cacheRepo: newStubCacheRepo(),
		client:    newStubSupplierClient(),
	}
	cacheSvc := service.NewPriceCacheService(st.cacheRepo, st.products, 24*time.Hour)
	svc := service.NewPriceResolverService(
		st.products, st.customers, st.brackets, st.syncLogs,
		cacheSvc, st.client, nil, timeout, 24*time.Hour, houseMarginPct,
	)
	return svc, st
}
