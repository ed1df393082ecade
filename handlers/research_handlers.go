package handlers

import (
	"github.com/gofiber/fiber/v2"

	"peachme/api-gateway/internal/store"
	"peachme/api-gateway/models"
	"peachme/api-gateway/utils"
)

// RunMarketResearch researches the pitch context attached to the stored
// evaluation. Stored results are returned as-is unless ?refresh=true;
// fresh results overwrite the marketResearch slot whole.
// POST /api/v1/market-research
func (h *ApplicationHandler) RunMarketResearch(c *fiber.Ctx) error {
	bundle, err := h.loadEvaluation()
	if err != nil {
		if isNotFound(err) {
			return utils.RespondWithError(c, fiber.StatusConflict, "No pitch evaluation found. Analyze a pitch first.")
		}
		h.Logger.Errorf("Error loading evaluation: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load evaluation")
	}
	if bundle.Evaluation.Context == nil {
		return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, "No pitch context available for market research")
	}

	if !c.QueryBool("refresh") {
		var stored models.MarketResearch
		if err := h.Store.Get(store.KeyMarketResearch, &stored); err == nil {
			return utils.RespondWithJSON(c, fiber.StatusOK, stored)
		}
	}

	research, err := h.Pitch.MarketResearch(c.Context(), *bundle.Evaluation.Context)
	if err != nil {
		return h.respondUpstreamError(c, "market-research", err)
	}

	if err := h.Store.Set(store.KeyMarketResearch, research); err != nil {
		h.Logger.Errorf("Error storing market research: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not store market research")
	}

	h.Logger.WithField("competitors", len(research.Competitors)).Info("Market research completed")
	return utils.RespondWithJSON(c, fiber.StatusOK, research)
}

// GetLatestMarketResearch returns the stored research record.
// GET /api/v1/market-research/latest
func (h *ApplicationHandler) GetLatestMarketResearch(c *fiber.Ctx) error {
	var research models.MarketResearch
	if err := h.Store.Get(store.KeyMarketResearch, &research); err != nil {
		if isNotFound(err) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "No market research found")
		}
		h.Logger.Errorf("Error loading market research: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load market research")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, research)
}
