package model

// BarcodeSymbol is the barcode symbology stored on a product.
// Values match the ids the admin SPA already persists.
type BarcodeSymbol int

const (
	BarcodeCode128 BarcodeSymbol = 1
	BarcodeCode39  BarcodeSymbol = 2
)

func (s BarcodeSymbol) String() string {
	switch s {
	case BarcodeCode128:
		return "CODE128"
	case BarcodeCode39:
		return "CODE39"
	default:
		return "unknown"
	}
}

// TaxType says whether OrderTax is added on top of the price or already included.
type TaxType int

const (
	TaxExclusive TaxType = 1
	TaxInclusive TaxType = 2
)

func (t TaxType) String() string {
	switch t {
	case TaxExclusive:
		return "exclusive"
	case TaxInclusive:
		return "inclusive"
	default:
		return "unknown"
	}
}

// PurchaseStatus mirrors the purchases.status column.
type PurchaseStatus int

const (
	PurchaseReceived PurchaseStatus = 1
	PurchasePending  PurchaseStatus = 2
	PurchaseOrdered  PurchaseStatus = 3
)

func (s PurchaseStatus) String() string {
	switch s {
	case PurchaseReceived:
		return "received"
	case PurchasePending:
		return "pending"
	case PurchaseOrdered:
		return "ordered"
	default:
		return "unknown"
	}
}

// DiscountType of a purchase line.
type DiscountType int

const (
	DiscountPercentage DiscountType = 1
	DiscountFixed      DiscountType = 2
)

// ProductType of a MainProduct header.
type ProductType int

const (
	SingleProduct  ProductType = 1
	VariantProduct ProductType = 2
)
