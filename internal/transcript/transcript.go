// Package transcript models a transcription payload as an ordered
// sequence of time-stamped segments, with an edit overlay that layers
// user corrections over the immutable parse.
package transcript

import "fmt"

// Format identifies which wire shape a raw transcription payload was
// parsed from. Detection order is fixed: segmented JSON, flat JSON,
// inline timestamps, then the plain-text fallback.
type Format int

const (
	// FormatPlainText - no structure detected; the whole payload is one segment.
	FormatPlainText Format = iota
	// FormatSegmentedJSON - JSON object carrying a segments array.
	FormatSegmentedJSON
	// FormatFlatJSON - JSON object carrying only a text field.
	FormatFlatJSON
	// FormatInlineTimestamps - lines of the form "[MM:SS.ff - MM:SS.ff] text".
	FormatInlineTimestamps
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatPlainText:
		return "plain-text"
	case FormatSegmentedJSON:
		return "segmented-json"
	case FormatFlatJSON:
		return "flat-json"
	case FormatInlineTimestamps:
		return "inline-timestamps"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", f)
	}
}

// Segment is one span of transcribed speech. Start and End are seconds
// from the beginning of the video; both are zero when the source format
// carries no per-segment timing. Text is immutable once parsed - edits
// live in the Editor's overlay, never here.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Transcript is the result of parsing one raw payload. Segments
// preserve source order and are recomputed from the raw text on every
// load; they are never serialized independently.
type Transcript struct {
	Format   Format
	Segments []Segment
}
