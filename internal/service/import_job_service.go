package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"inventapro/internal/dto"
	"inventapro/internal/infra"
	"inventapro/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const importJobKeyPrefix = "product_import:job:"

// Import job states.
const (
	JobQueued              = "queued"
	JobRunning             = "running"
	JobCompleted           = "completed"
	JobCompletedWithErrors = "completed_with_errors"
	JobFailed              = "failed"
)

var ErrImportJobNotFound = errors.New("import job not found")

// JobEnqueuer is satisfied by *worker.Dispatcher.
type JobEnqueuer interface {
	EnqueueProductImport(ctx context.Context, payload worker.ImportJobPayload) error
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

// ImportJobService runs imports in the background: the upload is parked in
// the blob store, a worker runs the batch and the state is kept in Redis.
type ImportJobService interface {
	Enqueue(ctx context.Context, fileName string, data []byte, notifyEmail string) (*dto.ImportJobResponse, error)
	Status(ctx context.Context, id uuid.UUID) (*dto.ImportJobResponse, error)
	worker.ImportJobProcessor
}

type importJobService struct {
	rdb      *redis.Client
	blobs    infra.BlobStore
	importer ProductImportService
	queue    JobEnqueuer
	ttl      time.Duration
	timeout  time.Duration
	now      func() time.Time
}

func NewImportJobService(
	rdb *redis.Client,
	blobs infra.BlobStore,
	importer ProductImportService,
	queue JobEnqueuer,
	ttl, timeout time.Duration,
) ImportJobService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &importJobService{
		rdb:      rdb,
		blobs:    blobs,
		importer: importer,
		queue:    queue,
		ttl:      ttl,
		timeout:  timeout,
		now:      time.Now,
	}
}

func jobKey(id uuid.UUID) string { return importJobKeyPrefix + id.String() }

func (s *importJobService) Enqueue(ctx context.Context, fileName string, data []byte, notifyEmail string) (*dto.ImportJobResponse, error) {
	if err := infra.CheckFormat(fileName); err != nil {
		return nil, err
	}
	id := uuid.New()
	blobKey := "imports/" + id.String() + strings.ToLower(filepath.Ext(fileName))
	if err := s.blobs.Put(ctx, blobKey, data, "application/octet-stream"); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	state := &dto.ImportJobResponse{
		JobID:     id.String(),
		Status:    JobQueued,
		FileName:  fileName,
		CreatedAt: s.now().UTC(),
	}
	if err := s.save(ctx, id, state); err != nil {
		_ = s.blobs.Delete(ctx, blobKey)
		return nil, err
	}

	payload := worker.ImportJobPayload{JobID: id, FileName: fileName, BlobKey: blobKey, NotifyEmail: notifyEmail}
	if err := s.queue.EnqueueProductImport(ctx, payload); err != nil {
		_ = s.blobs.Delete(ctx, blobKey)
		_ = s.rdb.Del(ctx, jobKey(id)).Err()
		return nil, fmt.Errorf("enqueue import job: %w", err)
	}

	log.Info().Str("job_id", id.String()).Str("file", fileName).Msg("import job queued")
	return state, nil
}

func (s *importJobService) Status(ctx context.Context, id uuid.UUID) (*dto.ImportJobResponse, error) {
	val, err := s.rdb.Get(ctx, jobKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrImportJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var state dto.ImportJobResponse
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("parse job state: %w", err)
	}
	return &state, nil
}

// ProcessImportJob is called by the worker pool. A returned error sends the
// job to the dead letter queue; the state in Redis is updated either way.
func (s *importJobService) ProcessImportJob(ctx context.Context, p worker.ImportJobPayload) error {
	state, err := s.Status(ctx, p.JobID)
	if err != nil {
		// state expired or was never written; rebuild it from the payload
		state = &dto.ImportJobResponse{JobID: p.JobID.String(), FileName: p.FileName, CreatedAt: s.now().UTC()}
	}
	state.Status = JobRunning
	if err := s.save(ctx, p.JobID, state); err != nil {
		log.Warn().Err(err).Str("job_id", p.JobID.String()).Msg("import job: could not mark running")
	}

	runErr := s.run(ctx, p, state)

	finished := s.now().UTC()
	state.FinishedAt = &finished
	switch {
	case runErr != nil:
		state.Status = JobFailed
		state.Error = runErr.Error()
	case state.Result != nil && len(state.Result.Errors) > 0:
		state.Status = JobCompletedWithErrors
	default:
		state.Status = JobCompleted
	}
	// finalize even when the pool is shutting down
	fctx := context.WithoutCancel(ctx)
	if err := s.save(fctx, p.JobID, state); err != nil {
		log.Error().Err(err).Str("job_id", p.JobID.String()).Msg("import job: could not store final state")
	}

	if err := s.blobs.Delete(fctx, p.BlobKey); err != nil {
		log.Warn().Err(err).Str("key", p.BlobKey).Msg("import job: could not remove upload")
	}
	if p.NotifyEmail != "" {
		s.notify(fctx, p.NotifyEmail, state)
	}
	return runErr
}

func (s *importJobService) run(ctx context.Context, p worker.ImportJobPayload, state *dto.ImportJobResponse) error {
	data, err := s.blobs.Get(ctx, p.BlobKey)
	if err != nil {
		return fmt.Errorf("load upload %s: %w", p.BlobKey, err)
	}
	reader, err := OpenImportFile(p.FileName, bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer reader.Close()

	jobID := p.JobID
	res, runErr := s.importer.Import(ctx, reader, ImportOptions{FileName: p.FileName, Timeout: s.timeout, JobID: &jobID})
	if res != nil {
		resp := ToImportResponse(res)
		state.Result = &resp
	}
	return runErr
}

func (s *importJobService) notify(ctx context.Context, to string, state *dto.ImportJobResponse) {
	payload := worker.EmailJobPayload{
		ToEmail: to,
		Subject: "Product import " + state.FileName + ": " + state.Status,
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Job %s finished with status %s.\n", state.JobID, state.Status)
	if state.Error != "" {
		fmt.Fprintf(&body, "Error: %s\n", state.Error)
	}
	if r := state.Result; r != nil {
		fmt.Fprintf(&body, "%s\nRows: %d, imported: %d, failed: %d.\n",
			r.Message, r.Summary.TotalRows, r.Summary.Imported, r.Summary.Failed)
		if len(r.Rows) > 0 {
			report, err := ErrorReportCSV(r.Rows)
			if err == nil {
				payload.AttachmentName = "import-errors-" + state.JobID + ".csv"
				payload.AttachmentCSV = string(report)
				body.WriteString("The failed rows are attached.\n")
			}
		}
	}
	payload.Body = body.String()

	if err := s.queue.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("email", to).Msg("import job: failed to enqueue report email")
	}
}

func (s *importJobService) save(ctx context.Context, id uuid.UUID, state *dto.ImportJobResponse) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, jobKey(id), b, s.ttl).Err()
}
