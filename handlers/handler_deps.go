package handlers

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"peachme/api-gateway/internal/pitchapi"
	"peachme/api-gateway/internal/session"
	"peachme/api-gateway/internal/store"
	"peachme/api-gateway/internal/transcript"
	"peachme/api-gateway/models"
)

// PitchService defines the pitch API operations handlers depend on.
// The concrete implementation is pitchapi.Client; tests substitute a
// fake backed by httptest.
type PitchService interface {
	Transcribe(ctx context.Context, video io.Reader, filename, title, description string) (*pitchapi.TranscribeResponse, error)
	TranscriptionStatus(ctx context.Context, id string) (*pitchapi.StatusResponse, error)
	Analyze(ctx context.Context, message, conversationID string) (*models.Evaluation, error)
	MarketResearch(ctx context.Context, pitchContext models.PitchContext) (*models.MarketResearch, error)
	PitchDeckContent(ctx context.Context, payload models.DeckPayload) (*models.PitchDeck, error)
}

// ApplicationHandler holds shared dependencies for handlers, plus the
// editor for the currently stored transcription. The editor is rebuilt
// whenever a different record occupies the lastTranscription slot, which
// is what discards edit overlays across uploads.
type ApplicationHandler struct {
	Pitch   PitchService
	Logger  *logrus.Logger
	Store   store.Store
	Session *session.Session

	mu       sync.Mutex
	editor   *transcript.Editor
	editorAt time.Time
}

// NewApplicationHandler creates an ApplicationHandler with the given dependencies.
func NewApplicationHandler(pitch PitchService, logger *logrus.Logger, st store.Store, sess *session.Session) *ApplicationHandler {
	return &ApplicationHandler{
		Pitch:   pitch,
		Logger:  logger,
		Store:   st,
		Session: sess,
	}
}

// currentEditor returns the editor over the stored transcription,
// parsing the record and starting a fresh overlay when the slot has
// been overwritten since the last call.
func (h *ApplicationHandler) currentEditor() (*transcript.Editor, *models.Transcription, error) {
	var record models.Transcription
	if err := h.Store.Get(store.KeyLastTranscription, &record); err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.editor == nil || !h.editorAt.Equal(record.Timestamp) {
		h.editor = transcript.NewEditor(transcript.Parse(record.Text))
		h.editorAt = record.Timestamp
	}
	return h.editor, &record, nil
}

// loadEvaluation fetches the stored pitch evaluation bundle.
func (h *ApplicationHandler) loadEvaluation() (*models.PitchEvaluation, error) {
	var evaluation models.PitchEvaluation
	if err := h.Store.Get(store.KeyPitchEvaluation, &evaluation); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// isNotFound reports whether err means the store slot is empty.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
