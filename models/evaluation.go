package models

import "time"

// Evaluation is the scoring payload returned by the analyze endpoint.
// Scores are integers in [1,5]; feedback fields are free text. The
// optional Context carries the pitch metadata the downstream
// market-research and pitch-deck calls consume.
type Evaluation struct {
	Clarity           int           `json:"clarity"`
	ClarityFeedback   string        `json:"clarity_feedback"`
	Content           int           `json:"content"`
	ContentFeedback   string        `json:"content_feedback"`
	Structure         int           `json:"structure"`
	StructureFeedback string        `json:"structure_feedback"`
	Delivery          int           `json:"delivery"`
	DeliveryFeedback  string        `json:"delivery_feedback"`
	Feedback          string        `json:"feedback"`
	ConversationID    string        `json:"conversation_id,omitempty"`
	Context           *PitchContext `json:"context,omitempty"`
}

// PitchContext is the industry/problem/vertical metadata extracted from
// an evaluation.
type PitchContext struct {
	Industry        string   `json:"industry"`
	Problem         string   `json:"problem"`
	TargetVerticals []string `json:"target_verticals,omitempty"`
}

// PitchEvaluation bundles an evaluation with the transcription it was
// produced from. This is the whole-value record stored under the
// pitchEvaluation key.
type PitchEvaluation struct {
	Evaluation    Evaluation    `json:"evaluation"`
	Transcription Transcription `json:"transcription"`
	Timestamp     time.Time     `json:"timestamp"`
}
