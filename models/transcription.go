package models

import "time"

// Transcription is the persisted result of one uploaded pitch video.
// The Text field holds the verbatim payload returned by the transcription
// service; it may itself be JSON, inline-timestamp lines, or plain text,
// and is re-parsed into segments on every load. Records are immutable
// after creation and are superseded whole by a new upload.
type Transcription struct {
	Title          string    `json:"title,omitempty"`
	Description    string    `json:"description,omitempty"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversation_id,omitempty"`
}
