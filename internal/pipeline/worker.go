package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/notify"
)

// Worker processes a single outline job.
type Worker struct {
	extractor *Extractor
	notifier  *notify.Client
	log       *slog.Logger
	backoff   func(attempt int) time.Duration
}

func NewWorker(ex *Extractor, n *notify.Client, log *slog.Logger) *Worker {
	return &Worker{
		extractor: ex,
		notifier:  n,
		log:       log,
		backoff:   Backoff,
	}
}

// Process runs extraction for a job and then delivers its webhook, if any.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	out, err := w.extractor.Extract(ctx, Request{
		Filename: job.Filename,
		Data:     job.FileData(),
		Sections: job.Sections,
		OnStage:  func(s JobStatus) { job.Advance(s, string(s)) },
	})
	job.SetOutput(out)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "failed")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}

	w.deliver(ctx, job, log)
}

// deliver posts the job result to its callback URL, retrying transient
// failures with backoff.
func (w *Worker) deliver(ctx context.Context, job *Job, log *slog.Logger) {
	if job.CallbackURL == "" || w.notifier == nil {
		return
	}
	snap := job.Snapshot()
	res, _, _ := job.Result()
	payload := notify.Payload{
		JobID:    snap.ID,
		Filename: snap.Filename,
		Status:   string(snap.Status),
		Result:   &res,
		Errors:   snap.Progress.Errors,
	}

	var err error
	for attempt := range MaxRetries {
		err = w.notifier.Deliver(ctx, job.CallbackURL, payload)
		if err == nil || !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable webhook error", "attempt", attempt, "error", err)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			err = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		log.Error("webhook delivery failed", "error", err)
		job.AddError("webhook: " + err.Error())
		return
	}
	log.Info("webhook delivered")
}
