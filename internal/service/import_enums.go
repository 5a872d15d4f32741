package service

import (
	"strings"

	"inventapro/internal/model"
)

// parseBarcodeSymbol accepts the symbology names exactly as the template lists them.
func parseBarcodeSymbol(s string) (model.BarcodeSymbol, bool) {
	switch s {
	case "CODE128":
		return model.BarcodeCode128, true
	case "CODE39":
		return model.BarcodeCode39, true
	}
	return 0, false
}

func parseTaxType(s string) (model.TaxType, bool) {
	switch strings.ToLower(s) {
	case "exclusive":
		return model.TaxExclusive, true
	case "inclusive":
		return model.TaxInclusive, true
	}
	return 0, false
}

// parsePurchaseStatus never fails: unknown or empty values mean pending.
func parsePurchaseStatus(s string) model.PurchaseStatus {
	switch strings.ToLower(s) {
	case "received":
		return model.PurchaseReceived
	case "ordered":
		return model.PurchaseOrdered
	default:
		return model.PurchasePending
	}
}
