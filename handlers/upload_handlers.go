package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"peachme/api-gateway/internal/pipeline"
	"peachme/api-gateway/internal/pitchapi"
	"peachme/api-gateway/utils"
)

// UploadPitch receives a pitch video as multipart form data and runs
// the full transcription pipeline: submit, take the synchronous path or
// poll the job, and store the resulting record as the session's latest
// transcription. The handler blocks until the pipeline reaches a
// terminal outcome, so the 5-minute polling ceiling bounds the request.
// POST /api/v1/pitches/upload
func (h *ApplicationHandler) UploadPitch(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		// Validation failure: nothing is sent upstream.
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No video file selected")
	}

	video, err := fileHeader.Open()
	if err != nil {
		h.Logger.Errorf("Error opening uploaded file: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not read uploaded video")
	}
	defer video.Close()

	runner := pipeline.NewRunner(h.Pitch, h.Store, h.Logger)
	runner.OnProgress = func(attempt, maxAttempts int) {
		h.Logger.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
			"percent":      attempt * 100 / maxAttempts,
		}).Debug("Processing transcription")
	}

	record, err := runner.Run(c.Context(), pipeline.Request{
		Video:       video,
		Filename:    fileHeader.Filename,
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: strings.TrimSpace(c.FormValue("description")),
	})
	if err != nil {
		return h.respondPipelineError(c, err)
	}

	// Force a fresh editor for the new record; any overlay from the
	// previous transcription is gone.
	h.mu.Lock()
	h.editor = nil
	h.mu.Unlock()

	return utils.RespondWithJSON(c, fiber.StatusCreated, record)
}

// respondPipelineError maps a pipeline failure to one displayable
// message and an appropriate status, per the error taxonomy: validation
// 400, upstream transport/protocol/job failures 502, timeout 504.
func (h *ApplicationHandler) respondPipelineError(c *fiber.Ctx, err error) error {
	h.Logger.WithField("error", err.Error()).Error("Upload pipeline failed")

	var jobErr *pipeline.JobError
	var transportErr *pitchapi.TransportError
	switch {
	case errors.Is(err, pipeline.ErrNoVideo):
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrTimeout):
		return utils.RespondWithError(c, fiber.StatusGatewayTimeout, err.Error())
	case errors.As(err, &jobErr),
		errors.As(err, &transportErr),
		errors.Is(err, pipeline.ErrNoJobID),
		errors.Is(err, pitchapi.ErrInvalidResponse):
		return utils.RespondWithError(c, fiber.StatusBadGateway, err.Error())
	default:
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
}
