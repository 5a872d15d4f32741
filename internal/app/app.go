// Package app is the composition root shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"inventapro/internal/config"
	"inventapro/internal/infra"
	"inventapro/internal/repository"
	"inventapro/internal/service"

	"gorm.io/gorm"
)

// Core holds what both binaries need: the database, the blob store and
// the services built on top of them.
type Core struct {
	Config    *config.Config
	DB        *gorm.DB
	Blobs     infra.BlobStore
	StorageCB *infra.Breaker // nil for local disk

	Imports  service.ProductImportService
	Products service.ProductService
	Stock    service.StockService
}

// NewCore connects to PostgreSQL, migrates the schema and opens the blob store.
func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Env != "production")
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := infra.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	blobs, cb, err := infra.NewBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	return Wire(cfg, db, blobs, cb), nil
}

// Wire builds the services over already opened infrastructure.
func Wire(cfg *config.Config, db *gorm.DB, blobs infra.BlobStore, cb *infra.Breaker) *Core {
	products := repository.NewProductRepository(db)
	stock := repository.NewStockRepository(db)
	barcodes := infra.NewPNGBarcodeRenderer()

	imports := service.NewProductImportService(service.ProductImportDeps{
		Tx:                    repository.NewTransactor(db),
		Products:              products,
		Catalog:               repository.NewCatalogRepository(),
		Warehouses:            repository.NewWarehouseRepository(),
		Purchases:             repository.NewPurchaseRepository(),
		Stock:                 stock,
		Settings:              repository.NewSettingRepository(db),
		ImportLogs:            repository.NewImportLogRepository(db),
		Barcodes:              barcodes,
		Blobs:                 blobs,
		DefaultTimeout:        cfg.ImportTimeout,
		DefaultPurchasePrefix: cfg.PurchaseCodeDefault,
	})

	return &Core{
		Config:    cfg,
		DB:        db,
		Blobs:     blobs,
		StorageCB: cb,
		Imports:   imports,
		Products:  service.NewProductService(products, blobs, barcodes, cfg.MediaURL),
		Stock:     service.NewStockService(stock),
	}
}

// Close releases the database pool.
func (c *Core) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
