package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"inventapro/internal/dto"
	"inventapro/internal/infra"
	"inventapro/internal/model"
	"inventapro/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store shared by the repository stubs ───────────────────────────

type stockKey struct{ warehouse, product uuid.UUID }

type memStore struct {
	products     map[string]model.Product // by code
	mainProducts map[uuid.UUID]model.MainProduct
	categories   map[string]model.ProductCategory
	brands       map[string]model.Brand
	baseUnits    []model.BaseUnit
	units        []model.Unit
	warehouses   []model.Warehouse
	suppliers    []model.Supplier
	purchases    map[uuid.UUID]model.Purchase
	items        []model.PurchaseItem
	stock        map[stockKey]decimal.Decimal
	movements    []model.StockMovement
	refSeq       int64
	settings     map[string]string
	logs         []model.ProductImportLog
}

func newMemStore() *memStore {
	return &memStore{
		products:     map[string]model.Product{},
		mainProducts: map[uuid.UUID]model.MainProduct{},
		categories:   map[string]model.ProductCategory{},
		brands:       map[string]model.Brand{},
		purchases:    map[uuid.UUID]model.Purchase{},
		stock:        map[stockKey]decimal.Decimal{},
		settings:     map[string]string{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies everything a transaction may write. Lookup tables that rows
// only read (units, warehouses, suppliers) are shared.
func (s *memStore) clone() memStore {
	c := *s
	c.products = cloneMap(s.products)
	c.mainProducts = cloneMap(s.mainProducts)
	c.categories = cloneMap(s.categories)
	c.brands = cloneMap(s.brands)
	c.purchases = cloneMap(s.purchases)
	c.stock = cloneMap(s.stock)
	c.items = append([]model.PurchaseItem(nil), s.items...)
	c.movements = append([]model.StockMovement(nil), s.movements...)
	return c
}

// seedCatalog adds a base unit "Unit" with units "Piece" and "Box", a
// "Litre" base unit with unit "Bottle", warehouse "Main" and supplier "Acme".
func (s *memStore) seedCatalog() {
	unit := model.BaseUnit{ID: uuid.New(), Name: "Unit"}
	litre := model.BaseUnit{ID: uuid.New(), Name: "Litre"}
	s.baseUnits = append(s.baseUnits, unit, litre)
	s.units = append(s.units,
		model.Unit{ID: uuid.New(), Name: "Piece", ShortName: "pc", BaseUnit: unit.ID},
		model.Unit{ID: uuid.New(), Name: "Box", ShortName: "bx", BaseUnit: unit.ID},
		model.Unit{ID: uuid.New(), Name: "Bottle", ShortName: "bt", BaseUnit: litre.ID},
	)
	s.warehouses = append(s.warehouses, model.Warehouse{ID: uuid.New(), Name: "Main"})
	s.suppliers = append(s.suppliers, model.Supplier{ID: uuid.New(), Name: "Acme"})
}

func (s *memStore) stockOf(warehouse, product uuid.UUID) decimal.Decimal {
	return s.stock[stockKey{warehouse, product}]
}

// ── Transactor stub ───────────────────────────────────────────────────────────

// memTx restores the store snapshot when fn fails, giving stubs the same
// all-or-nothing behaviour as a database transaction.
type memTx struct {
	st        *memStore
	commitErr error
	// slowCommit blocks the commit until ctx is done, then fails with ctx.Err()
	slowCommit bool
	calls      int
}

var _ repository.Transactor = (*memTx)(nil)

func (t *memTx) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	t.calls++
	snap := t.st.clone()
	if err := fn(nil); err != nil {
		*t.st = snap
		return err
	}
	if t.slowCommit {
		<-ctx.Done()
		*t.st = snap
		return ctx.Err()
	}
	if t.commitErr != nil {
		*t.st = snap
		return t.commitErr
	}
	return nil
}

// ── Repository stubs ──────────────────────────────────────────────────────────

type stubProductRepo struct {
	st    *memStore
	dbErr error // returned by CreateTx when set
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for _, p := range r.st.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.st.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ExistsByCodeTx(_ *gorm.DB, code string) (bool, error) {
	_, ok := r.st.products[code]
	return ok, nil
}

func (r *stubProductRepo) CreateMainProductTx(_ *gorm.DB, m *model.MainProduct) error {
	r.st.mainProducts[m.ID] = *m
	return nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	if r.dbErr != nil {
		return r.dbErr
	}
	if _, dup := r.st.products[p.Code]; dup {
		return errors.New("duplicate key value violates unique constraint")
	}
	r.st.products[p.Code] = *p
	return nil
}

type stubCatalogRepo struct{ st *memStore }

var _ repository.CatalogRepository = (*stubCatalogRepo)(nil)

func (r *stubCatalogRepo) FirstOrCreateCategoryTx(_ *gorm.DB, name string) (*model.ProductCategory, error) {
	c, ok := r.st.categories[name]
	if !ok {
		c = model.ProductCategory{ID: uuid.New(), Name: name}
		r.st.categories[name] = c
	}
	return &c, nil
}

func (r *stubCatalogRepo) FirstOrCreateBrandTx(_ *gorm.DB, name string) (*model.Brand, error) {
	b, ok := r.st.brands[name]
	if !ok {
		b = model.Brand{ID: uuid.New(), Name: name}
		r.st.brands[name] = b
	}
	return &b, nil
}

func (r *stubCatalogRepo) FindBaseUnitByNameTx(_ *gorm.DB, name string) (*model.BaseUnit, error) {
	for _, u := range r.st.baseUnits {
		if strings.EqualFold(u.Name, name) {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCatalogRepo) FindUnitByNameTx(_ *gorm.DB, name string, baseUnitID uuid.UUID) (*model.Unit, error) {
	for _, u := range r.st.units {
		if strings.EqualFold(u.Name, name) && u.BaseUnit == baseUnitID {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubWarehouseRepo struct{ st *memStore }

var _ repository.WarehouseRepository = (*stubWarehouseRepo)(nil)

func (r *stubWarehouseRepo) FindWarehouseByNameTx(_ *gorm.DB, name string) (*model.Warehouse, error) {
	for _, w := range r.st.warehouses {
		if strings.EqualFold(w.Name, name) {
			w := w
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubWarehouseRepo) FindSupplierByNameTx(_ *gorm.DB, name string) (*model.Supplier, error) {
	for _, s := range r.st.suppliers {
		if strings.EqualFold(s.Name, name) {
			s := s
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubPurchaseRepo struct{ st *memStore }

var _ repository.PurchaseRepository = (*stubPurchaseRepo)(nil)

func (r *stubPurchaseRepo) CreateTx(_ *gorm.DB, p *model.Purchase) error {
	r.st.purchases[p.ID] = *p
	return nil
}

func (r *stubPurchaseRepo) CreateItemTx(_ *gorm.DB, item *model.PurchaseItem) error {
	r.st.items = append(r.st.items, *item)
	return nil
}

func (r *stubPurchaseRepo) NextReferenceCodeTx(_ *gorm.DB, prefix string) (string, error) {
	r.st.refSeq++
	return repository.FormatPurchaseReference(prefix, r.st.refSeq), nil
}

func (r *stubPurchaseRepo) FinalizeTx(_ *gorm.DB, id uuid.UUID, ref string, total decimal.Decimal) error {
	p, ok := r.st.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.ReferenceCode = &ref
	p.GrandTotal = total
	r.st.purchases[id] = p
	return nil
}

type stubStockRepo struct{ st *memStore }

var _ repository.StockRepository = (*stubStockRepo)(nil)

func (r *stubStockRepo) AdjustTx(_ *gorm.DB, adj repository.StockAdjustment) (*model.StockMovement, error) {
	k := stockKey{adj.WarehouseID, adj.ProductID}
	before := r.st.stock[k]
	r.st.stock[k] = before.Add(adj.Delta)
	mov := model.StockMovement{
		ID:          uuid.New(),
		WarehouseID: adj.WarehouseID,
		ProductID:   adj.ProductID,
		Type:        adj.Type,
		Quantity:    adj.Delta,
		StockBefore: before,
		StockAfter:  before.Add(adj.Delta),
		ReferenceID: adj.ReferenceID,
	}
	r.st.movements = append(r.st.movements, mov)
	return &mov, nil
}

func (r *stubStockRepo) List(_ context.Context, _ repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return r.st.movements, int64(len(r.st.movements)), nil
}

type stubSettingRepo struct{ st *memStore }

var _ repository.SettingRepository = (*stubSettingRepo)(nil)

func (r *stubSettingRepo) GetValue(_ context.Context, key string) (string, error) {
	return r.st.settings[key], nil
}

type stubImportLogRepo struct {
	mu sync.Mutex
	st *memStore
}

var _ repository.ImportLogRepository = (*stubImportLogRepo)(nil)

func (r *stubImportLogRepo) Create(_ context.Context, l *model.ProductImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.logs = append(r.st.logs, *l)
	return nil
}

func (r *stubImportLogRepo) ListRecent(_ context.Context, _ int) ([]model.ProductImportLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ProductImportLog(nil), r.st.logs...), nil
}

// ── Blob store stub ───────────────────────────────────────────────────────────

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	deleted []string
}

var _ infra.BlobStore = (*memBlobs)(nil)

func newMemBlobs() *memBlobs { return &memBlobs{objects: map[string][]byte{}} }

func (b *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return b.putErr
	}
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, infra.ErrBlobNotFound
	}
	return data, nil
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

// ── Row source stub ───────────────────────────────────────────────────────────

type sliceReader struct {
	rows   []infra.RawRow
	pos    int
	before func(pos int) // called before each chunk is returned
}

var _ infra.RowReader = (*sliceReader)(nil)

// rowsOf turns cell slices into raw rows numbered from sheet line 2.
func rowsOf(cells ...[]string) *sliceReader {
	r := &sliceReader{}
	for i, c := range cells {
		r.rows = append(r.rows, infra.RawRow{Line: i + 2, Cells: c})
	}
	return r
}

func (r *sliceReader) NextChunk(size int) ([]infra.RawRow, error) {
	if r.before != nil {
		r.before(r.pos)
	}
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	end := r.pos + size
	if end > len(r.rows) {
		end = len(r.rows)
	}
	out := r.rows[r.pos:end]
	r.pos = end
	return out, nil
}

func (r *sliceReader) Close() error { return nil }
