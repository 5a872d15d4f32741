package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ImportJobPayload is the job envelope sent to QueueProductImport. The
// uploaded file waits in the blob store under BlobKey.
type ImportJobPayload struct {
	JobID       uuid.UUID `json:"job_id"`
	FileName    string    `json:"file_name"`
	BlobKey     string    `json:"blob_key"`
	NotifyEmail string    `json:"notify_email,omitempty"`
}

// ImportJobProcessor runs a queued import to completion.
type ImportJobProcessor interface {
	ProcessImportJob(ctx context.Context, payload ImportJobPayload) error
}

type ImportWorker struct {
	proc ImportJobProcessor
}

func NewImportWorker(proc ImportJobProcessor) *ImportWorker {
	return &ImportWorker{proc: proc}
}

func (w *ImportWorker) Handle(ctx context.Context, raw json.RawMessage) error {
	var payload ImportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("import_worker: invalid payload: %w", err)
	}
	return w.proc.ProcessImportJob(ctx, payload)
}
