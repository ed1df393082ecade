package transcript

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// timestampLine matches one inline-timestamp line: a bracketed
// "[MM:SS.ff - MM:SS.ff]" range followed by the segment text.
var timestampLine = regexp.MustCompile(`\[(\d+:\d+\.\d+)\s*-\s*(\d+:\d+\.\d+)\]\s*(.+)`)

// jsonPayload covers both structured shapes the transcription service
// is known to return: a segments array, or a bare text field.
type jsonPayload struct {
	Segments []jsonSegment `json:"segments"`
	Text     string        `json:"text"`
}

// jsonSegment accepts both start/end and start_time/end_time key pairs;
// upstream models have shipped both spellings.
type jsonSegment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

func (s jsonSegment) start() float64 {
	if s.Start != 0 {
		return s.Start
	}
	return s.StartTime
}

func (s jsonSegment) end() float64 {
	if s.End != 0 {
		return s.End
	}
	return s.EndTime
}

// Parse converts a raw transcription payload into an ordered segment
// sequence. Detection runs in a fixed order and the first shape that
// matches wins: segmented JSON, flat-text JSON, inline timestamp lines,
// then a single whole-payload fallback segment. Parse is pure: the same
// input always yields the same transcript, and a non-empty input always
// yields at least one segment.
func Parse(raw string) *Transcript {
	var payload jsonPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		if len(payload.Segments) > 0 {
			segments := make([]Segment, 0, len(payload.Segments))
			for _, s := range payload.Segments {
				segments = append(segments, Segment{
					Start: s.start(),
					End:   s.end(),
					Text:  strings.TrimSpace(s.Text),
				})
			}
			return &Transcript{Format: FormatSegmentedJSON, Segments: segments}
		}
		if payload.Text != "" {
			return &Transcript{
				Format:   FormatFlatJSON,
				Segments: []Segment{{Text: strings.TrimSpace(payload.Text)}},
			}
		}
		// Valid JSON but neither shape; fall through to the text detectors.
	}

	var segments []Segment
	for _, line := range strings.Split(raw, "\n") {
		m := timestampLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start, err := ParseClock(m[1])
		if err != nil {
			continue
		}
		end, err := ParseClock(m[2])
		if err != nil {
			continue
		}
		segments = append(segments, Segment{Start: start, End: end, Text: strings.TrimSpace(m[3])})
	}
	if len(segments) > 0 {
		return &Transcript{Format: FormatInlineTimestamps, Segments: segments}
	}

	return &Transcript{
		Format:   FormatPlainText,
		Segments: []Segment{{Text: strings.TrimSpace(raw)}},
	}
}

// ParseClock converts an "MM:SS.ff" token to seconds.
func ParseClock(token string) (float64, error) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock token %q", token)
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in clock token %q", token)
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in clock token %q", token)
	}
	return float64(minutes)*60 + seconds, nil
}

// FormatClock renders seconds as "MM:SS.ff" for segment display.
func FormatClock(seconds float64) string {
	m := int(seconds) / 60
	s := int(seconds) % 60
	hundredths := int((seconds - float64(int(seconds))) * 100)
	return fmt.Sprintf("%02d:%02d.%02d", m, s, hundredths)
}
