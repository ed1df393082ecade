package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"peachme/api-gateway/internal/pitchapi"
	"peachme/api-gateway/internal/store"
	"peachme/api-gateway/models"
	"peachme/api-gateway/utils"
)

// AnalyzePitch flattens the stored transcription - corrections applied,
// timestamp markup discarded - submits it for evaluation, and stores
// the resulting bundle under the pitchEvaluation slot.
// POST /api/v1/pitches/analyze
func (h *ApplicationHandler) AnalyzePitch(c *fiber.Ctx) error {
	editor, record, err := h.currentEditor()
	if err != nil {
		if isNotFound(err) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "No transcription found. Upload a pitch video first.")
		}
		h.Logger.Errorf("Error loading transcription: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load transcription")
	}

	message := editor.Reconstruct()
	if strings.TrimSpace(message) == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Transcript is empty")
	}

	evaluation, err := h.Pitch.Analyze(c.Context(), message, record.ConversationID)
	if err != nil {
		return h.respondUpstreamError(c, "analyze", err)
	}

	bundle := models.PitchEvaluation{
		Evaluation:    *evaluation,
		Transcription: *record,
		Timestamp:     time.Now().UTC(),
	}
	if err := h.Store.Set(store.KeyPitchEvaluation, bundle); err != nil {
		h.Logger.Errorf("Error storing evaluation: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not store evaluation")
	}

	h.Logger.WithField("clarity", evaluation.Clarity).Info("Pitch evaluated")
	return utils.RespondWithJSON(c, fiber.StatusOK, bundle)
}

// GetLatestEvaluation returns the stored evaluation bundle.
// GET /api/v1/evaluations/latest
func (h *ApplicationHandler) GetLatestEvaluation(c *fiber.Ctx) error {
	bundle, err := h.loadEvaluation()
	if err != nil {
		if isNotFound(err) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "No pitch evaluation found")
		}
		h.Logger.Errorf("Error loading evaluation: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load evaluation")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, bundle)
}

// respondUpstreamError maps a pitch API failure on a non-upload call to
// one displayable message: transport and protocol problems are bad
// gateway, anything else is internal.
func (h *ApplicationHandler) respondUpstreamError(c *fiber.Ctx, operation string, err error) error {
	h.Logger.WithField("error", err.Error()).Errorf("Pitch API %s call failed", operation)

	var transportErr *pitchapi.TransportError
	if errors.As(err, &transportErr) || errors.Is(err, pitchapi.ErrInvalidResponse) {
		return utils.RespondWithError(c, fiber.StatusBadGateway, err.Error())
	}
	return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
}
