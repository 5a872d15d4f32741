package repository

import (
	"fmt"

	"inventapro/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseRepository persists purchases and their lines.
// All writes happen inside the caller's transaction.
type PurchaseRepository interface {
	CreateTx(tx *gorm.DB, p *model.Purchase) error
	CreateItemTx(tx *gorm.DB, item *model.PurchaseItem) error
	// NextReferenceCodeTx reserves the next reference number and formats it
	// as <prefix>_111<n>.
	NextReferenceCodeTx(tx *gorm.DB, prefix string) (string, error)
	FinalizeTx(tx *gorm.DB, id uuid.UUID, referenceCode string, grandTotal decimal.Decimal) error
}

type purchaseRepo struct{}

func NewPurchaseRepository() PurchaseRepository { return &purchaseRepo{} }

func (r *purchaseRepo) CreateTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Create(p).Error
}

func (r *purchaseRepo) CreateItemTx(tx *gorm.DB, item *model.PurchaseItem) error {
	return tx.Create(item).Error
}

func (r *purchaseRepo) NextReferenceCodeTx(tx *gorm.DB, prefix string) (string, error) {
	var n int64
	if err := tx.Raw("SELECT nextval('purchases_reference_seq')").Scan(&n).Error; err != nil {
		return "", err
	}
	return FormatPurchaseReference(prefix, n), nil
}

func (r *purchaseRepo) FinalizeTx(tx *gorm.DB, id uuid.UUID, referenceCode string, grandTotal decimal.Decimal) error {
	return tx.Model(&model.Purchase{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reference_code": referenceCode,
		"grand_total":    grandTotal,
	}).Error
}

// FormatPurchaseReference renders a purchase reference code. The "_111" infix
// keeps codes compatible with references issued by the admin panel.
func FormatPurchaseReference(prefix string, n int64) string {
	return fmt.Sprintf("%s_111%d", prefix, n)
}
