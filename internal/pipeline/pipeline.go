// Package pipeline drives one upload attempt from video submission to a
// stored transcription record, tolerating both synchronous and
// asynchronous transcription backends. A run either ends with exactly
// one record persisted, or with a classified error and nothing written.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"peachme/api-gateway/internal/pitchapi"
	"peachme/api-gateway/internal/store"
	"peachme/api-gateway/models"
)

const (
	// DefaultPollInterval is the gap between status checks.
	DefaultPollInterval = 2 * time.Second
	// DefaultMaxAttempts caps polling at a 5-minute ceiling.
	DefaultMaxAttempts = 150
)

// Errors terminating a run before or during polling.
var (
	// ErrNoVideo - submission rejected before any network call.
	ErrNoVideo = errors.New("no video file selected")
	// ErrNoJobID - the response carried neither a transcript nor a job identifier.
	ErrNoJobID = errors.New("no transcription data received from server")
	// ErrTimeout - the polling attempt ceiling was exhausted.
	ErrTimeout = errors.New("transcription timed out after 5 minutes")
)

// JobError is a backend-reported transcription failure, carrying the
// server-supplied reason when present.
type JobError struct {
	Reason string
}

func (e *JobError) Error() string {
	if e.Reason == "" {
		return "transcription failed: unknown error"
	}
	return "transcription failed: " + e.Reason
}

// TranscriptionService is the slice of the pitch API the pipeline needs.
type TranscriptionService interface {
	Transcribe(ctx context.Context, video io.Reader, filename, title, description string) (*pitchapi.TranscribeResponse, error)
	TranscriptionStatus(ctx context.Context, id string) (*pitchapi.StatusResponse, error)
}

// Request is one upload submission.
type Request struct {
	Video       io.Reader
	Filename    string
	Title       string
	Description string
}

// Runner executes upload attempts sequentially: at most one status
// request is ever in flight, because the loop only sleeps after a poll
// response has been evaluated. Sleep and OnProgress are injectable for
// tests; the zero values give real 2-second waits and no reporting.
type Runner struct {
	Service      TranscriptionService
	Store        store.Store
	Logger       *logrus.Logger
	PollInterval time.Duration
	MaxAttempts  int

	// Sleep waits between polls and must honor ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnProgress reports coarse progress as attempt/maxAttempts.
	OnProgress func(attempt, maxAttempts int)
}

// NewRunner creates a runner with the production interval and ceiling.
func NewRunner(svc TranscriptionService, st store.Store, logger *logrus.Logger) *Runner {
	return &Runner{
		Service:      svc,
		Store:        st,
		Logger:       logger,
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

// Run submits the video and returns the persisted transcription record.
// The record is written to the lastTranscription slot only on a
// successful terminal outcome; every failure path leaves the previous
// record untouched. Cancelling ctx stops the run at the next wait.
func (r *Runner) Run(ctx context.Context, req Request) (*models.Transcription, error) {
	if req.Video == nil {
		return nil, ErrNoVideo
	}

	resp, err := r.Service.Transcribe(ctx, req.Video, req.Filename, req.Title, req.Description)
	if err != nil {
		return nil, fmt.Errorf("submitting video: %w", err)
	}

	// Synchronous backend: the transcript came back with the upload.
	if resp.Transcript != "" {
		return r.persist(req, resp.Transcript, resp.ConversationID)
	}

	jobID := resp.JobID()
	if jobID == "" {
		return nil, ErrNoJobID
	}

	r.Logger.WithField("job_id", jobID).Info("Transcription job accepted, polling for completion")
	return r.poll(ctx, req, jobID)
}

func (r *Runner) poll(ctx context.Context, req Request, jobID string) (*models.Transcription, error) {
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := r.Service.TranscriptionStatus(ctx, jobID)
		if err != nil {
			// A failed poll is fatal to the run; the attempt counter is
			// the only retry budget.
			return nil, fmt.Errorf("checking transcription status: %w", err)
		}

		switch status.Status {
		case "completed":
			if status.Transcript == "" {
				return nil, fmt.Errorf("%w: job %s completed without a transcript", pitchapi.ErrInvalidResponse, jobID)
			}
			return r.persist(req, status.Transcript, jobID)
		case "failed":
			return nil, &JobError{Reason: status.Error}
		}

		if r.OnProgress != nil {
			r.OnProgress(attempt, maxAttempts)
		}
		if err := r.sleep(ctx); err != nil {
			return nil, err
		}
	}
	return nil, ErrTimeout
}

func (r *Runner) sleep(ctx context.Context) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, r.PollInterval)
	}
	timer := time.NewTimer(r.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) persist(req Request, transcript, conversationID string) (*models.Transcription, error) {
	record := models.Transcription{
		Title:          req.Title,
		Description:    req.Description,
		Text:           transcript,
		Timestamp:      time.Now().UTC(),
		ConversationID: conversationID,
	}
	if err := r.Store.Set(store.KeyLastTranscription, record); err != nil {
		return nil, fmt.Errorf("storing transcription: %w", err)
	}
	r.Logger.WithFields(logrus.Fields{
		"title":  record.Title,
		"length": len(record.Text),
	}).Info("Transcription stored")
	return &record, nil
}
