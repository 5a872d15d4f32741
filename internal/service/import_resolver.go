package service

import (
	"errors"
	"fmt"

	"inventapro/internal/model"
	"inventapro/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// resolvedRow is a validated row with its enums parsed, numbers normalized
// and references looked up.
type resolvedRow struct {
	ProductRow
	symbol     model.BarcodeSymbol
	taxType    model.TaxType
	cost       decimal.Decimal
	price      decimal.Decimal
	stockAlert *decimal.Decimal
	orderTax   *decimal.Decimal

	category     *model.ProductCategory
	brand        *model.Brand
	baseUnit     *model.BaseUnit
	saleUnit     *model.Unit
	purchaseUnit *model.Unit
}

type referenceResolver struct {
	products   repository.ProductRepository
	catalog    repository.CatalogRepository
	warehouses repository.WarehouseRepository
}

// checkRow runs every check that needs no writes: duplicate code, enums and
// numbers. It must pass before anything is created.
func (r *referenceResolver) checkRow(tx *gorm.DB, row ProductRow) (*resolvedRow, error) {
	exists, err := r.products.ExistsByCodeTx(tx, row.Code)
	if err != nil {
		return nil, fmt.Errorf("check product code: %w", err)
	}
	if exists {
		return nil, failRow(ErrDuplicateProductCode, "Product code %s already exists.", row.Code)
	}

	symbol, ok := parseBarcodeSymbol(row.BarcodeSymbol)
	if !ok {
		return nil, failRow(ErrInvalidBarcodeSymbol, "Invalid barcode symbol: %s", row.BarcodeSymbol)
	}
	taxType, ok := parseTaxType(row.TaxType)
	if !ok {
		return nil, failRow(ErrInvalidTaxType, "Invalid tax type: %s", row.TaxType)
	}

	rr := &resolvedRow{ProductRow: row, symbol: symbol, taxType: taxType}
	if rr.cost, err = decimal.NewFromString(row.Cost); err != nil {
		return nil, failRow(ErrInvalidNumericField, "The cost must be numeric.")
	}
	if rr.price, err = decimal.NewFromString(row.Price); err != nil {
		return nil, failRow(ErrInvalidNumericField, "The price must be numeric.")
	}
	if rr.stockAlert, err = optionalDecimal(row.StockAlert); err != nil {
		return nil, failRow(ErrInvalidNumericField, "The stock alert must be numeric.")
	}
	if rr.orderTax, err = optionalDecimal(row.OrderTax); err != nil {
		return nil, failRow(ErrInvalidNumericField, "The order tax must be numeric.")
	}
	return rr, nil
}

// resolveReferences finds or creates the category and brand, then looks up
// the three units. Units are never created.
func (r *referenceResolver) resolveReferences(tx *gorm.DB, rr *resolvedRow) error {
	var err error
	if rr.category, err = r.catalog.FirstOrCreateCategoryTx(tx, rr.Category); err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	if rr.brand, err = r.catalog.FirstOrCreateBrandTx(tx, rr.Brand); err != nil {
		return fmt.Errorf("resolve brand: %w", err)
	}

	rr.baseUnit, err = r.catalog.FindBaseUnitByNameTx(tx, rr.BaseUnit)
	if err != nil {
		return lookupFailure(err, ErrUnitNotFound, "Base unit %s not found.", rr.BaseUnit)
	}
	rr.saleUnit, err = r.catalog.FindUnitByNameTx(tx, rr.SaleUnit, rr.baseUnit.ID)
	if err != nil {
		return lookupFailure(err, ErrUnitNotFound, "Sale unit %s not found.", rr.SaleUnit)
	}
	rr.purchaseUnit, err = r.catalog.FindUnitByNameTx(tx, rr.PurchaseUnit, rr.baseUnit.ID)
	if err != nil {
		return lookupFailure(err, ErrUnitNotFound, "Purchase unit %s not found.", rr.PurchaseUnit)
	}
	return nil
}

// resolvePurchaseParties looks up the warehouse and supplier of an opening purchase.
func (r *referenceResolver) resolvePurchaseParties(tx *gorm.DB, rr *resolvedRow) (*model.Warehouse, *model.Supplier, error) {
	wh, err := r.warehouses.FindWarehouseByNameTx(tx, rr.Warehouse)
	if err != nil {
		return nil, nil, lookupFailure(err, ErrReferenceNotFound, "Warehouse or supplier not found for product: %s", rr.Name)
	}
	sup, err := r.warehouses.FindSupplierByNameTx(tx, rr.Supplier)
	if err != nil {
		return nil, nil, lookupFailure(err, ErrReferenceNotFound, "Warehouse or supplier not found for product: %s", rr.Name)
	}
	return wh, sup, nil
}

// lookupFailure maps a missing record to kind; other errors pass through.
func lookupFailure(err, kind error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return failRow(kind, format, args...)
	}
	return err
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
