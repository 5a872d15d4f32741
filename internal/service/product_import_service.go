package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"inventapro/internal/dto"
	"inventapro/internal/infra"
	"inventapro/internal/model"
	"inventapro/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	MsgImportSucceeded  = "All products were imported successfully."
	MsgImportWithErrors = "Import completed with errors"
)

// ImportOptions tunes one batch run.
type ImportOptions struct {
	FileName string
	// Timeout caps the whole run. Zero uses the service default.
	Timeout time.Duration
	JobID   *uuid.UUID
}

// ImportResult is the outcome of a batch. Errors are in row order.
type ImportResult struct {
	FileName   string     `json:"file_name"`
	TotalRows  int        `json:"total_rows"`
	Imported   int        `json:"imported"`
	Errors     []RowError `json:"errors"`
	TimedOut   bool       `json:"timed_out"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

func (r *ImportResult) Failed() int     { return len(r.Errors) }
func (r *ImportResult) Succeeded() bool { return len(r.Errors) == 0 && !r.TimedOut }

// Message is the headline reported to the user.
func (r *ImportResult) Message() string {
	if len(r.Errors) == 0 {
		return MsgImportSucceeded
	}
	return MsgImportWithErrors
}

// Messages renders every row failure as "Row N: reason".
func (r *ImportResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i := range r.Errors {
		out[i] = r.Errors[i].String()
	}
	return out
}

// ProductImportService runs spreadsheet batches of products.
type ProductImportService interface {
	// Import consumes src row by row. Row failures never abort the batch;
	// the returned error is only set for a timeout, a cancelled context or an
	// unreadable file, and the partial result is returned with it.
	Import(ctx context.Context, src infra.RowReader, opts ImportOptions) (*ImportResult, error)
	// RecentLogs lists the latest audit entries, newest first.
	RecentLogs(ctx context.Context, limit int) ([]dto.ImportLogResponse, error)
}

// ProductImportDeps wires the collaborators of the import service.
type ProductImportDeps struct {
	Tx         repository.Transactor
	Products   repository.ProductRepository
	Catalog    repository.CatalogRepository
	Warehouses repository.WarehouseRepository
	Purchases  repository.PurchaseRepository
	Stock      repository.StockRepository
	Settings   repository.SettingRepository
	ImportLogs repository.ImportLogRepository
	Barcodes   infra.BarcodeRenderer
	Blobs      infra.BlobStore

	DefaultTimeout        time.Duration
	DefaultPurchasePrefix string
	Now                   func() time.Time
}

type productImportService struct {
	committer      *rowCommitter
	settings       repository.SettingRepository
	logs           repository.ImportLogRepository
	defaultTimeout time.Duration
	defaultPrefix  string
	now            func() time.Time
}

func NewProductImportService(d ProductImportDeps) ProductImportService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.DefaultTimeout <= 0 {
		d.DefaultTimeout = time.Hour
	}
	return &productImportService{
		committer: &rowCommitter{
			tx: d.Tx,
			resolver: &referenceResolver{
				products:   d.Products,
				catalog:    d.Catalog,
				warehouses: d.Warehouses,
			},
			products:  d.Products,
			purchases: d.Purchases,
			stock:     d.Stock,
			barcodes:  d.Barcodes,
			blobs:     d.Blobs,
			now:       d.Now,
		},
		settings:       d.Settings,
		logs:           d.ImportLogs,
		defaultTimeout: d.DefaultTimeout,
		defaultPrefix:  d.DefaultPurchasePrefix,
		now:            d.Now,
	}
}

func (s *productImportService) Import(ctx context.Context, src infra.RowReader, opts ImportOptions) (*ImportResult, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := &ImportResult{FileName: opts.FileName, Errors: []RowError{}, StartedAt: s.now()}
	prefix := s.purchasePrefix(runCtx)

	var fatal error
	index := 0
	for fatal == nil {
		chunk, readErr := src.NextChunk(importChunkSize)
		for _, raw := range chunk {
			if fatal = s.interrupted(runCtx, res, timeout, index); fatal != nil {
				break
			}
			index++
			s.importRow(runCtx, res, newProductRow(index, raw), prefix)
		}
		if fatal != nil || errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			fatal = fmt.Errorf("read import file: %w", readErr)
		}
	}
	// the deadline may have hit while the last row was in flight
	if fatal == nil {
		fatal = s.interrupted(runCtx, res, timeout, index)
	}

	res.FinishedAt = s.now()
	log.Info().
		Str("file", res.FileName).
		Int("total", res.TotalRows).
		Int("imported", res.Imported).
		Int("failed", res.Failed()).
		Bool("timed_out", res.TimedOut).
		Dur("elapsed", res.FinishedAt.Sub(res.StartedAt)).
		Msg("product import finished")

	// the audit row is written even when the caller's context is gone
	s.writeAuditLog(context.WithoutCancel(ctx), res, opts.JobID)
	return res, fatal
}

// interrupted reports why the run must stop before the next row, if it must.
func (s *productImportService) interrupted(ctx context.Context, res *ImportResult, timeout time.Duration, done int) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		res.TimedOut = true
		return fmt.Errorf("%w (%s, stopped after %d rows)", ErrImportTimeout, timeout, done)
	}
	return err
}

func (s *productImportService) importRow(ctx context.Context, res *ImportResult, row ProductRow, prefix string) {
	res.TotalRows++
	if err := validateRow(row); err != nil {
		s.recordFailure(res, row, err)
		return
	}
	if _, err := s.committer.commit(ctx, row, prefix); err != nil {
		s.recordFailure(res, row, err)
		return
	}
	res.Imported++
}

func (s *productImportService) recordFailure(res *ImportResult, row ProductRow, err error) {
	re := newRowError(row, err)
	res.Errors = append(res.Errors, re)

	ev := log.Error().Int("row", re.Row).Int("line", re.Line).Str("code", re.Code).Str("kind", re.Kind)
	if re.Kind == "Internal" {
		ev = ev.Err(err)
	}
	ev.Msg(re.Message)
}

// purchasePrefix reads the purchase_code setting once per batch.
func (s *productImportService) purchasePrefix(ctx context.Context) string {
	v, err := s.settings.GetValue(ctx, model.SettingPurchaseCode)
	if err != nil {
		log.Warn().Err(err).Msg("import: could not read purchase_code setting, using default")
	}
	if v == "" {
		return s.defaultPrefix
	}
	return v
}

func (s *productImportService) writeAuditLog(ctx context.Context, res *ImportResult, jobID *uuid.UUID) {
	errs, err := json.Marshal(res.Errors)
	if err != nil {
		log.Error().Err(err).Msg("import: marshal audit errors")
		errs = []byte("[]")
	}
	entry := &model.ProductImportLog{
		ID:         uuid.New(),
		JobID:      jobID,
		FileName:   res.FileName,
		TotalRows:  res.TotalRows,
		Imported:   res.Imported,
		Failed:     res.Failed(),
		Errors:     datatypes.JSON(errs),
		TimedOut:   res.TimedOut,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("file", res.FileName).Msg("import: write audit log")
	}
}

func (s *productImportService) RecentLogs(ctx context.Context, limit int) ([]dto.ImportLogResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	logs, err := s.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ImportLogResponse, len(logs))
	for i, l := range logs {
		r := dto.ImportLogResponse{
			ID:         l.ID.String(),
			FileName:   l.FileName,
			TotalRows:  l.TotalRows,
			Imported:   l.Imported,
			Failed:     l.Failed,
			TimedOut:   l.TimedOut,
			StartedAt:  l.StartedAt,
			FinishedAt: l.FinishedAt,
		}
		if l.JobID != nil {
			id := l.JobID.String()
			r.JobID = &id
		}
		out[i] = r
	}
	return out, nil
}
