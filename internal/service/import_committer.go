package service

import (
	"context"
	"fmt"
	"time"

	"inventapro/internal/infra"
	"inventapro/internal/model"
	"inventapro/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// cleanupTimeout bounds the compensating delete of a barcode image.
const cleanupTimeout = 10 * time.Second

// BarcodeKey is where a product's barcode image lives in the blob store.
func BarcodeKey(p *model.Product) string {
	return "product_barcode/barcode-" + p.BarcodeReference() + ".png"
}

// rowCommitter persists one validated row atomically.
type rowCommitter struct {
	tx        repository.Transactor
	resolver  *referenceResolver
	products  repository.ProductRepository
	purchases repository.PurchaseRepository
	stock     repository.StockRepository
	barcodes  infra.BarcodeRenderer
	blobs     infra.BlobStore
	now       func() time.Time
}

// commitResult is what a successful row produced.
type commitResult struct {
	product  *model.Product
	purchase *model.Purchase
}

// ── commit ──────────────────────────────────────────────────────────────────
// Single transaction:
//   1. duplicate code, barcode symbol, tax type (nothing written yet)
//   2. category/brand find-or-create, unit lookups
//   3. MainProduct + Product
//   4. optional opening purchase: Purchase, PurchaseItem, stock, reference code
//   5. barcode image Put (last, so a storage failure rolls everything back)
// If the commit itself fails after the Put, the image is deleted again.

func (c *rowCommitter) commit(ctx context.Context, row ProductRow, purchasePrefix string) (*commitResult, error) {
	var res commitResult
	var storedKey string

	err := c.tx.Transaction(ctx, func(tx *gorm.DB) error {
		rr, err := c.resolver.checkRow(tx, row)
		if err != nil {
			return err
		}
		if err := c.resolver.resolveReferences(tx, rr); err != nil {
			return err
		}

		product, err := c.createProduct(tx, rr)
		if err != nil {
			return err
		}
		res.product = product

		if rr.wantsPurchase() {
			if res.purchase, err = c.createOpeningPurchase(tx, rr, product, purchasePrefix); err != nil {
				return err
			}
		}

		img, err := c.barcodes.Render(product.Code, product.BarcodeSymbol)
		if err != nil {
			return failRow(ErrStorageFailure, "Barcode image could not be generated: %v", err)
		}
		key := BarcodeKey(product)
		if err := c.blobs.Put(ctx, key, img, "image/png"); err != nil {
			return failRow(ErrStorageFailure, "Barcode image could not be stored: %v", err)
		}
		storedKey = key
		return nil
	})
	if err != nil {
		if storedKey != "" {
			// the row context may already be past its deadline here
			dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
			delErr := c.blobs.Delete(dctx, storedKey)
			cancel()
			if delErr != nil {
				log.Warn().Err(delErr).Str("key", storedKey).Msg("import: orphaned barcode image after failed commit")
			}
		}
		return nil, err
	}
	return &res, nil
}

func (c *rowCommitter) createProduct(tx *gorm.DB, rr *resolvedRow) (*model.Product, error) {
	main := &model.MainProduct{
		ID:          uuid.New(),
		Name:        rr.Name,
		Code:        rr.Code,
		ProductUnit: rr.baseUnit.ID,
		ProductType: model.SingleProduct,
	}
	if err := c.products.CreateMainProductTx(tx, main); err != nil {
		return nil, fmt.Errorf("create main product: %w", err)
	}

	p := &model.Product{
		ID:                uuid.New(),
		Name:              rr.Name,
		Code:              rr.Code,
		ProductCode:       rr.Code,
		ProductCategoryID: rr.category.ID,
		BrandID:           rr.brand.ID,
		BarcodeSymbol:     rr.symbol,
		ProductCost:       rr.cost,
		ProductPrice:      rr.price,
		ProductUnit:       rr.baseUnit.ID,
		SaleUnit:          rr.saleUnit.ID,
		PurchaseUnit:      rr.purchaseUnit.ID,
		StockAlert:        rr.stockAlert,
		OrderTax:          rr.orderTax,
		TaxType:           rr.taxType,
		MainProductID:     main.ID,
	}
	if rr.Notes != "" {
		notes := rr.Notes
		p.Notes = &notes
	}
	if err := c.products.CreateTx(tx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (c *rowCommitter) createOpeningPurchase(tx *gorm.DB, rr *resolvedRow, p *model.Product, prefix string) (*model.Purchase, error) {
	wh, sup, err := c.resolver.resolvePurchaseParties(tx, rr)
	if err != nil {
		return nil, err
	}
	qty, err := decimal.NewFromString(rr.Quantity)
	if err != nil {
		return nil, failRow(ErrInvalidNumericField, "The quantity must be numeric.")
	}

	purchase := &model.Purchase{
		ID:          uuid.New(),
		SupplierID:  sup.ID,
		WarehouseID: wh.ID,
		Date:        c.now(),
		Status:      parsePurchaseStatus(rr.Status),
	}
	if err := c.purchases.CreateTx(tx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	subTotal := p.ProductCost.Mul(qty)
	item := &model.PurchaseItem{
		ID:             uuid.New(),
		PurchaseID:     purchase.ID,
		ProductID:      p.ID,
		ProductCost:    p.ProductCost,
		NetUnitCost:    p.ProductCost,
		TaxType:        p.TaxType,
		TaxValue:       p.OrderTax,
		TaxAmount:      decimal.Zero,
		DiscountType:   model.DiscountFixed,
		DiscountValue:  decimal.Zero,
		DiscountAmount: decimal.Zero,
		PurchaseUnit:   p.PurchaseUnit,
		Quantity:       qty,
		SubTotal:       subTotal,
	}
	if err := c.purchases.CreateItemTx(tx, item); err != nil {
		return nil, fmt.Errorf("create purchase item: %w", err)
	}

	if _, err := c.stock.AdjustTx(tx, repository.StockAdjustment{
		WarehouseID: wh.ID,
		ProductID:   p.ID,
		Delta:       qty,
		Type:        model.MovementPurchaseImport,
		ReferenceID: &purchase.ID,
	}); err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	ref, err := c.purchases.NextReferenceCodeTx(tx, prefix)
	if err != nil {
		return nil, fmt.Errorf("purchase reference: %w", err)
	}
	if err := c.purchases.FinalizeTx(tx, purchase.ID, ref, subTotal); err != nil {
		return nil, fmt.Errorf("finalize purchase: %w", err)
	}
	purchase.ReferenceCode = &ref
	purchase.GrandTotal = subTotal
	purchase.Items = []model.PurchaseItem{*item}
	return purchase, nil
}
