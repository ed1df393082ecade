// Package pitchapi is the HTTP client for the external pitch API: video
// transcription, pitch analysis, market research, and deck generation.
// Every endpoint speaks JSON over HTTP; transcription submission is
// multipart form data.
package pitchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"peachme/api-gateway/models"
)

// ErrInvalidResponse marks a response body that failed to decode as JSON
// or is missing a field the protocol requires.
var ErrInvalidResponse = errors.New("invalid response from server")

// TransportError is a non-2xx answer from the pitch API, carrying the
// status and whatever detail the server put in the body.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pitch api http %d: %s", e.StatusCode, e.Body)
}

// Client calls the pitch API. BaseURL points at the API root, e.g.
// http://0.0.0.0:8001/api/video.
type Client struct {
	baseURL string
	hc      *http.Client
	logger  *logrus.Logger
}

// New creates a client for the pitch API at baseURL. The long timeout
// covers video uploads; per-request deadlines come from the context.
func New(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Minute},
		logger:  logger,
	}
}

// TranscribeResponse is the answer to a transcription submission:
// either a synchronous transcript, or one of three job-identifier
// spellings to poll on.
type TranscribeResponse struct {
	Transcript      string `json:"transcript"`
	ID              string `json:"id"`
	TranscriptionID string `json:"transcription_id"`
	ConversationID  string `json:"conversation_id"`
}

// JobID returns the job identifier under whichever key the server used,
// or "" when the response carries none.
func (r *TranscribeResponse) JobID() string {
	switch {
	case r.ID != "":
		return r.ID
	case r.TranscriptionID != "":
		return r.TranscriptionID
	default:
		return r.ConversationID
	}
}

// StatusResponse is one poll of an asynchronous transcription job.
type StatusResponse struct {
	Status     string `json:"status"`
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

// Transcribe submits a video for transcription as multipart form data
// with optional title and description fields.
func (c *Client) Transcribe(ctx context.Context, video io.Reader, filename, title, description string) (*TranscribeResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("video", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, video); err != nil {
		return nil, fmt.Errorf("reading video: %w", err)
	}
	if err := mw.WriteField("title", title); err != nil {
		return nil, err
	}
	if err := mw.WriteField("description", description); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.WithField("filename", filename).Info("Submitting video for transcription")

	var out TranscribeResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TranscriptionStatus polls an asynchronous transcription job.
func (c *Client) TranscriptionStatus(ctx context.Context, id string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcribe/"+id, nil)
	if err != nil {
		return nil, err
	}
	var out StatusResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type analyzeRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Analyze submits the flattened transcript text for evaluation.
func (c *Client) Analyze(ctx context.Context, message, conversationID string) (*models.Evaluation, error) {
	var out models.Evaluation
	if err := c.postJSON(ctx, "/analyze", analyzeRequest{Message: message, ConversationID: conversationID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// messageRequest wraps a JSON-encoded payload the way the research and
// deck endpoints expect it: as a single message string.
type messageRequest struct {
	Message string `json:"message"`
}

// MarketResearch runs competitor/market-size research for a pitch context.
func (c *Client) MarketResearch(ctx context.Context, pitchContext models.PitchContext) (*models.MarketResearch, error) {
	encoded, err := json.Marshal(pitchContext)
	if err != nil {
		return nil, err
	}
	var out models.MarketResearch
	if err := c.postJSON(ctx, "/market-research", messageRequest{Message: string(encoded)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PitchDeckContent generates presentational deck markup from the
// evaluation, its context, and any market research. The markup is
// opaque to the gateway.
func (c *Client) PitchDeckContent(ctx context.Context, payload models.DeckPayload) (*models.PitchDeck, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out models.PitchDeck
	if err := c.postJSON(ctx, "/pitch-deck-content", messageRequest{Message: string(encoded)}, &out); err != nil {
		return nil, err
	}
	if out.JSXCode == "" {
		return nil, fmt.Errorf("%w: missing jsx_code", ErrInvalidResponse)
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	encoded, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request, maps non-2xx answers to TransportError, and
// decodes the body into out. Undecodable bodies are ErrInvalidResponse.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("calling pitch api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading pitch api response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"uri":         req.URL.Path,
			"status_code": resp.StatusCode,
		}).Error("Pitch API returned an error status")
		return &TransportError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
