package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"peachme/api-gateway/internal/pitchapi"
	"peachme/api-gateway/internal/session"
	"peachme/api-gateway/internal/store"
	"peachme/api-gateway/models"
)

const twoSegmentRaw = "[00:01.00 - 00:03.50] Hello there\n[00:03.50 - 00:05.00] world"

// fakePitch is a scripted PitchService. Each field holds the canned
// result for one operation; the fake records what it was called with.
type fakePitch struct {
	transcript     string
	conversationID string
	evaluation     *models.Evaluation
	research       *models.MarketResearch
	deck           *models.PitchDeck
	err            error

	analyzedMessage string
	researchContext *models.PitchContext
}

func (f *fakePitch) Transcribe(ctx context.Context, video io.Reader, filename, title, description string) (*pitchapi.TranscribeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	io.Copy(io.Discard, video)
	return &pitchapi.TranscribeResponse{Transcript: f.transcript, ConversationID: f.conversationID}, nil
}

func (f *fakePitch) TranscriptionStatus(ctx context.Context, id string) (*pitchapi.StatusResponse, error) {
	return &pitchapi.StatusResponse{Status: "completed", Transcript: f.transcript}, nil
}

func (f *fakePitch) Analyze(ctx context.Context, message, conversationID string) (*models.Evaluation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.analyzedMessage = message
	return f.evaluation, nil
}

func (f *fakePitch) MarketResearch(ctx context.Context, pitchContext models.PitchContext) (*models.MarketResearch, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.researchContext = &pitchContext
	return f.research, nil
}

func (f *fakePitch) PitchDeckContent(ctx context.Context, payload models.DeckPayload) (*models.PitchDeck, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deck, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testApp(t *testing.T, pitch PitchService) (*fiber.App, store.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	h := NewApplicationHandler(pitch, logger, st, session.Load(st, logger))

	app := fiber.New()
	v1 := app.Group("/api/v1")
	v1.Post("/pitches/upload", h.UploadPitch)
	v1.Post("/pitches/analyze", h.AnalyzePitch)
	v1.Get("/transcriptions/latest", h.GetLatestTranscription)
	v1.Put("/transcriptions/latest/segments/:index", h.EditSegment)
	v1.Delete("/transcriptions/latest/edits", h.ResetEdits)
	v1.Get("/evaluations/latest", h.GetLatestEvaluation)
	v1.Post("/market-research", h.RunMarketResearch)
	v1.Get("/market-research/latest", h.GetLatestMarketResearch)
	v1.Post("/pitch-deck", h.GeneratePitchDeck)
	v1.Post("/auth/signup", h.SignUp)
	v1.Post("/auth/signin", h.SignIn)
	v1.Post("/auth/signout", h.SignOut)
	v1.Get("/auth/me", h.CurrentUser)
	return app, st
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, env
}

func seedTranscription(t *testing.T, st store.Store) models.Transcription {
	t.Helper()
	record := models.Transcription{
		Title:          "Demo pitch",
		Text:           twoSegmentRaw,
		Timestamp:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ConversationID: "conv-1",
	}
	if err := st.Set(store.KeyLastTranscription, record); err != nil {
		t.Fatalf("seed transcription: %v", err)
	}
	return record
}

func seedEvaluation(t *testing.T, st store.Store, pitchContext *models.PitchContext) {
	t.Helper()
	bundle := models.PitchEvaluation{
		Evaluation: models.Evaluation{
			Clarity:  4,
			Feedback: "Solid pitch",
			Context:  pitchContext,
		},
		Transcription: models.Transcription{Text: twoSegmentRaw},
		Timestamp:     time.Now().UTC(),
	}
	if err := st.Set(store.KeyPitchEvaluation, bundle); err != nil {
		t.Fatalf("seed evaluation: %v", err)
	}
}

func TestUploadPitchRejectsMissingFile(t *testing.T) {
	app, st := testApp(t, &fakePitch{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", "no video here")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pitches/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var record models.Transcription
	if err := st.Get(store.KeyLastTranscription, &record); err == nil {
		t.Fatal("validation failure must not write a transcription record")
	}
}

func TestUploadPitchSynchronousTranscript(t *testing.T) {
	pitch := &fakePitch{transcript: twoSegmentRaw, conversationID: "conv-9"}
	app, st := testApp(t, pitch)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("video", "pitch.mp4")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte("fake video bytes"))
	writer.WriteField("title", "Demo pitch")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pitches/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var record models.Transcription
	if err := st.Get(store.KeyLastTranscription, &record); err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if record.Text != twoSegmentRaw {
		t.Fatalf("stored text = %q, want raw transcript", record.Text)
	}
	if record.ConversationID != "conv-9" {
		t.Fatalf("conversation id = %q", record.ConversationID)
	}
}

func TestGetLatestTranscriptionWithoutRecord(t *testing.T) {
	app, _ := testApp(t, &fakePitch{})
	resp, env := doJSON(t, app, http.MethodGet, "/api/v1/transcriptions/latest", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if env.Status != "error" {
		t.Fatalf("envelope status = %q", env.Status)
	}
}

func TestGetLatestTranscriptionSegmentsAndSearch(t *testing.T) {
	app, st := testApp(t, &fakePitch{})
	seedTranscription(t, st)

	resp, env := doJSON(t, app, http.MethodGet, "/api/v1/transcriptions/latest", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var view struct {
		Format   string `json:"format"`
		Total    int    `json:"total_segments"`
		Segments []struct {
			Index int      `json:"index"`
			Time  string   `json:"time"`
			Text  string   `json:"text"`
			Spans [][2]int `json:"spans"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	if view.Format != "inline-timestamps" || view.Total != 2 || len(view.Segments) != 2 {
		t.Fatalf("view = %+v", view)
	}
	if view.Segments[0].Time != "00:01.00 - 00:03.50" {
		t.Fatalf("time = %q", view.Segments[0].Time)
	}

	_, env = doJSON(t, app, http.MethodGet, "/api/v1/transcriptions/latest?q=hello", nil)
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("unmarshal filtered view: %v", err)
	}
	if len(view.Segments) != 1 || view.Segments[0].Index != 0 {
		t.Fatalf("filtered segments = %+v", view.Segments)
	}
	if len(view.Segments[0].Spans) != 1 || view.Segments[0].Spans[0] != [2]int{0, 5} {
		t.Fatalf("spans = %v", view.Segments[0].Spans)
	}
}

func TestEditSegmentOverridesText(t *testing.T) {
	app, st := testApp(t, &fakePitch{})
	seedTranscription(t, st)

	resp, env := doJSON(t, app, http.MethodPut, "/api/v1/transcriptions/latest/segments/0",
		map[string]string{"text": "Hello world"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, env.Message)
	}
	var seg struct {
		Text   string `json:"text"`
		Edited bool   `json:"edited"`
	}
	if err := json.Unmarshal(env.Data, &seg); err != nil {
		t.Fatalf("unmarshal segment: %v", err)
	}
	if seg.Text != "Hello world" || !seg.Edited {
		t.Fatalf("segment = %+v", seg)
	}

	// The stored record keeps the original raw text.
	var record models.Transcription
	if err := st.Get(store.KeyLastTranscription, &record); err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if record.Text != twoSegmentRaw {
		t.Fatal("editing must not mutate the stored record")
	}
}

func TestEditSegmentOutOfRange(t *testing.T) {
	app, st := testApp(t, &fakePitch{})
	seedTranscription(t, st)

	resp, _ := doJSON(t, app, http.MethodPut, "/api/v1/transcriptions/latest/segments/7",
		map[string]string{"text": "nope"})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestResetEditsRevertsSegments(t *testing.T) {
	app, st := testApp(t, &fakePitch{})
	seedTranscription(t, st)

	doJSON(t, app, http.MethodPut, "/api/v1/transcriptions/latest/segments/1",
		map[string]string{"text": "planet"})
	resp, _ := doJSON(t, app, http.MethodDelete, "/api/v1/transcriptions/latest/edits", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("reset status = %d", resp.StatusCode)
	}

	_, env := doJSON(t, app, http.MethodGet, "/api/v1/transcriptions/latest", nil)
	var view struct {
		Edited   bool `json:"edited"`
		Segments []struct {
			Text string `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	if view.Edited {
		t.Fatal("edited flag should clear after reset")
	}
	if view.Segments[1].Text != "world" {
		t.Fatalf("segment text = %q, want parsed text restored", view.Segments[1].Text)
	}
}

func TestAnalyzePitchSendsCorrectedTranscript(t *testing.T) {
	pitch := &fakePitch{evaluation: &models.Evaluation{Clarity: 4, Feedback: "Good"}}
	app, st := testApp(t, pitch)
	seedTranscription(t, st)

	doJSON(t, app, http.MethodPut, "/api/v1/transcriptions/latest/segments/0",
		map[string]string{"text": "Hello investors"})

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/pitches/analyze", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, env.Message)
	}
	if pitch.analyzedMessage != "Hello investors\nworld" {
		t.Fatalf("analyzed message = %q", pitch.analyzedMessage)
	}
	if strings.Contains(pitch.analyzedMessage, "[00:") {
		t.Fatal("timestamp markup must not reach the analyze call")
	}

	var bundle models.PitchEvaluation
	if err := st.Get(store.KeyPitchEvaluation, &bundle); err != nil {
		t.Fatalf("stored evaluation: %v", err)
	}
	if bundle.Evaluation.Clarity != 4 {
		t.Fatalf("stored clarity = %d", bundle.Evaluation.Clarity)
	}
}

func TestAnalyzePitchWithoutTranscription(t *testing.T) {
	app, _ := testApp(t, &fakePitch{})
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/pitches/analyze", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRunMarketResearchWithoutEvaluation(t *testing.T) {
	app, _ := testApp(t, &fakePitch{})
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/market-research", nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestRunMarketResearchWithoutContext(t *testing.T) {
	app, st := testApp(t, &fakePitch{})
	seedEvaluation(t, st, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/market-research", nil)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestRunMarketResearchStoresResult(t *testing.T) {
	pitch := &fakePitch{research: &models.MarketResearch{
		Competitors: []models.Competitor{{Name: "Rival Inc"}},
	}}
	app, st := testApp(t, pitch)
	seedEvaluation(t, st, &models.PitchContext{Industry: "fintech", Problem: "slow payments"})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/market-research", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if pitch.researchContext == nil || pitch.researchContext.Industry != "fintech" {
		t.Fatalf("research context = %+v", pitch.researchContext)
	}

	var stored models.MarketResearch
	if err := st.Get(store.KeyMarketResearch, &stored); err != nil {
		t.Fatalf("stored research: %v", err)
	}
	if len(stored.Competitors) != 1 {
		t.Fatalf("stored competitors = %d", len(stored.Competitors))
	}

	// A second call without refresh serves the stored record, not a new
	// upstream call.
	pitch.researchContext = nil
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/market-research", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("second call status = %d", resp.StatusCode)
	}
	if pitch.researchContext != nil {
		t.Fatal("stored research should be served without calling upstream")
	}
}

func TestGeneratePitchDeck(t *testing.T) {
	pitch := &fakePitch{deck: &models.PitchDeck{JSXCode: "<Deck/>"}}
	app, st := testApp(t, pitch)
	seedEvaluation(t, st, &models.PitchContext{Industry: "fintech"})

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/pitch-deck", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, env.Message)
	}
	var deck models.PitchDeck
	if err := json.Unmarshal(env.Data, &deck); err != nil {
		t.Fatalf("unmarshal deck: %v", err)
	}
	if deck.JSXCode != "<Deck/>" {
		t.Fatalf("jsx_code = %q", deck.JSXCode)
	}
}

func TestGeneratePitchDeckWithoutEvaluation(t *testing.T) {
	app, _ := testApp(t, &fakePitch{})
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/pitch-deck", nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestUpstreamFailureMapsToBadGateway(t *testing.T) {
	pitch := &fakePitch{err: &pitchapi.TransportError{StatusCode: 500, Body: "boom"}}
	app, st := testApp(t, pitch)
	seedTranscription(t, st)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/pitches/analyze", nil)
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestAuthSignUpSignOutFlow(t *testing.T) {
	app, _ := testApp(t, &fakePitch{})

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("signup status = %d: %s", resp.StatusCode, env.Message)
	}

	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if user.Email != "ada@example.com" || user.ID == "" {
		t.Fatalf("user = %+v", user)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/signout", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("signout status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("me after signout = %d, want 401", resp.StatusCode)
	}
}

func TestSignInDerivesNameFromEmail(t *testing.T) {
	app, _ := testApp(t, &fakePitch{})
	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/auth/signin", map[string]string{
		"email": "grace@example.com", "password": "secret1",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("signin status = %d: %s", resp.StatusCode, env.Message)
	}
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if user.Name != "grace" {
		t.Fatalf("name = %q, want local part of email", user.Name)
	}
}

func TestSignInRejectsBadPayload(t *testing.T) {
	app, _ := testApp(t, &fakePitch{})
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/signin", map[string]string{
		"email": "not-an-email", "password": "secret1",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
