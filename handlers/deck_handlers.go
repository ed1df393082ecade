package handlers

import (
	"github.com/gofiber/fiber/v2"

	"peachme/api-gateway/internal/store"
	"peachme/api-gateway/models"
	"peachme/api-gateway/utils"
)

// GeneratePitchDeck assembles the stored evaluation, its context, and
// any market research into the deck payload and returns the generated
// markup untouched. Rendering and sanitization happen downstream.
// POST /api/v1/pitch-deck
func (h *ApplicationHandler) GeneratePitchDeck(c *fiber.Ctx) error {
	bundle, err := h.loadEvaluation()
	if err != nil {
		if isNotFound(err) {
			return utils.RespondWithError(c, fiber.StatusConflict, "No pitch evaluation found. Please upload and analyze a pitch first.")
		}
		h.Logger.Errorf("Error loading evaluation: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load evaluation")
	}

	payload := models.DeckPayload{
		Context:    bundle.Evaluation.Context,
		Evaluation: bundle.Evaluation,
	}
	var research models.MarketResearch
	if err := h.Store.Get(store.KeyMarketResearch, &research); err == nil {
		payload.MarketResearch = &research
	}

	deck, err := h.Pitch.PitchDeckContent(c.Context(), payload)
	if err != nil {
		return h.respondUpstreamError(c, "pitch-deck-content", err)
	}

	h.Logger.WithField("markup_bytes", len(deck.JSXCode)).Info("Pitch deck generated")
	return utils.RespondWithJSON(c, fiber.StatusOK, deck)
}
