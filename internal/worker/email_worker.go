package worker

// email_worker.go
// Processes email jobs from QueueEmail: import reports with the failed rows
// attached as CSV.

import (
	"context"
	"encoding/json"
	"fmt"

	"inventapro/internal/infra"

	"github.com/rs/zerolog/log"
)

const emailMaxAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail        string `json:"to_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentName string `json:"attachment_name,omitempty"`
	AttachmentCSV  string `json:"attachment_csv,omitempty"`
}

// Mailer is satisfied by *infra.Mailer.
type Mailer interface {
	Send(to, subject, body string, attachments ...infra.Attachment) error
}

type EmailWorker struct {
	mailer Mailer
}

func NewEmailWorker(mailer Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Handle sends the mail, retrying transient SMTP failures with backoff.
func (w *EmailWorker) Handle(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	var atts []infra.Attachment
	if payload.AttachmentCSV != "" {
		atts = append(atts, infra.Attachment{
			Name:        payload.AttachmentName,
			ContentType: "text/csv",
			Data:        []byte(payload.AttachmentCSV),
		})
	}

	err := withRetry(ctx, emailMaxAttempts, func(attempt int) error {
		err := w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, atts...)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).
				Msg("email_worker: send failed")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: import report sent")
	return nil
}
