package model

// Setting is a key/value pair edited from the admin settings screen.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

// SettingPurchaseCode holds the prefix used for purchase reference codes.
const SettingPurchaseCode = "purchase_code"
