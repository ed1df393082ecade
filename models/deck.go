package models

// DeckPayload is the message body sent to the pitch-deck-content
// endpoint, assembled from the stored evaluation and research records.
type DeckPayload struct {
	Context        *PitchContext   `json:"context"`
	Evaluation     Evaluation      `json:"evaluation"`
	MarketResearch *MarketResearch `json:"market_research,omitempty"`
}

// PitchDeck wraps the opaque markup returned by the deck generator.
// Rendering and sanitization happen downstream; the gateway passes the
// string through untouched.
type PitchDeck struct {
	JSXCode string `json:"jsx_code"`
}
