package infra

import (
	"fmt"

	"inventapro/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the schema
// up to date: AutoMigrate for tables, then idempotent SQL patches for objects
// GORM cannot express (sequences, expression indexes).
func NewDatabase(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table the service owns.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ProductCategory{},
		&model.Brand{},
		&model.BaseUnit{},
		&model.Unit{},
		&model.Warehouse{},
		&model.Supplier{},
		&model.MainProduct{},
		&model.Product{},
		&model.Purchase{},
		&model.PurchaseItem{},
		&model.ManageStock{},
		&model.StockMovement{},
		&model.Setting{},
		&model.ProductImportLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches is fully idempotent: every statement is guarded so that
// re-running on an up-to-date schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"purchase reference sequence",
			`CREATE SEQUENCE IF NOT EXISTS purchases_reference_seq START 1`},
		// Lookups by name are case-insensitive; these keep them index-backed.
		{"lower(name) index on base_units",
			`CREATE INDEX IF NOT EXISTS idx_base_units_lower_name ON base_units (LOWER(name))`},
		{"lower(name) index on units",
			`CREATE INDEX IF NOT EXISTS idx_units_lower_name ON units (LOWER(name), base_unit)`},
		{"lower(name) index on warehouses",
			`CREATE INDEX IF NOT EXISTS idx_warehouses_lower_name ON warehouses (LOWER(name))`},
		{"lower(name) index on suppliers",
			`CREATE INDEX IF NOT EXISTS idx_suppliers_lower_name ON suppliers (LOWER(name))`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}
