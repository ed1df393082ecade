package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"peachme/api-gateway/internal/transcript"
	"peachme/api-gateway/utils"
)

// segmentView is one segment as the front end renders it: effective
// text (corrections applied), a formatted clock range, and the match
// spans when a search term was given.
type segmentView struct {
	Index  int      `json:"index"`
	Start  float64  `json:"start"`
	End    float64  `json:"end"`
	Time   string   `json:"time"`
	Text   string   `json:"text"`
	Edited bool     `json:"edited"`
	Spans  [][2]int `json:"spans,omitempty"`
}

type transcriptionView struct {
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Timestamp   string        `json:"timestamp"`
	Format      string        `json:"format"`
	Edited      bool          `json:"edited"`
	Total       int           `json:"total_segments"`
	Segments    []segmentView `json:"segments"`
}

// GetLatestTranscription returns the stored transcription as segments,
// filtered by the optional case-insensitive ?q= search term.
// GET /api/v1/transcriptions/latest
func (h *ApplicationHandler) GetLatestTranscription(c *fiber.Ctx) error {
	editor, record, err := h.currentEditor()
	if err != nil {
		if isNotFound(err) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "No transcription found")
		}
		h.Logger.Errorf("Error loading transcription: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load transcription")
	}

	matches := editor.Search(c.Query("q"))
	segments := make([]segmentView, 0, len(matches))
	for _, m := range matches {
		segments = append(segments, segmentView{
			Index:  m.Index,
			Start:  m.Start,
			End:    m.End,
			Time:   transcript.FormatClock(m.Start) + " - " + transcript.FormatClock(m.End),
			Text:   m.Text,
			Edited: editor.IsOverridden(m.Index),
			Spans:  m.Spans,
		})
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, transcriptionView{
		Title:       record.Title,
		Description: record.Description,
		Timestamp:   record.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Format:      editor.Format().String(),
		Edited:      editor.Edited(),
		Total:       editor.Len(),
		Segments:    segments,
	})
}

// EditSegmentPayload is a correction for one segment's text.
type EditSegmentPayload struct {
	Text string `json:"text" validate:"required"`
}

// EditSegment commits a correction to one segment. The parsed text is
// never mutated; the correction lives in the overlay until the next
// upload or a reset.
// PUT /api/v1/transcriptions/latest/segments/:index
func (h *ApplicationHandler) EditSegment(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid segment index")
	}

	var payload EditSegmentPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse JSON: "+err.Error())
	}
	validate := validator.New()
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, utils.FormatValidationErrors(err))
	}

	editor, _, err := h.currentEditor()
	if err != nil {
		if isNotFound(err) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "No transcription found")
		}
		h.Logger.Errorf("Error loading transcription: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load transcription")
	}

	if err := editor.BeginEdit(index); err != nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, err.Error())
	}
	if err := editor.UpdateScratch(index, payload.Text); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	if err := editor.CommitEdit(index); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	text, _ := editor.EffectiveText(index)
	seg, _ := editor.Segment(index)
	return utils.RespondWithJSON(c, fiber.StatusOK, segmentView{
		Index:  index,
		Start:  seg.Start,
		End:    seg.End,
		Time:   transcript.FormatClock(seg.Start) + " - " + transcript.FormatClock(seg.End),
		Text:   text,
		Edited: editor.IsOverridden(index),
	})
}

// ResetEdits discards every correction; all segments revert to their
// parsed text.
// DELETE /api/v1/transcriptions/latest/edits
func (h *ApplicationHandler) ResetEdits(c *fiber.Ctx) error {
	editor, _, err := h.currentEditor()
	if err != nil {
		if isNotFound(err) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "No transcription found")
		}
		h.Logger.Errorf("Error loading transcription: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load transcription")
	}

	editor.ResetAll()
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"edited": false})
}
