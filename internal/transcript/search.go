package transcript

import "strings"

// Match is one segment surviving a search, carrying its effective text
// and the byte spans of each term occurrence for highlighting. Spans is
// nil for an empty search term.
type Match struct {
	Index int
	Start float64
	End   float64
	Text  string
	Spans [][2]int
}

// Search filters segments by case-insensitive substring match over
// their effective text, so committed corrections are searched, not the
// original parse. An empty term yields every segment unfiltered and
// unhighlighted. Read-only.
func (e *Editor) Search(term string) []Match {
	e.mu.Lock()
	defer e.mu.Unlock()

	needle := strings.ToLower(term)
	matches := make([]Match, 0, len(e.tr.Segments))
	for i, seg := range e.tr.Segments {
		text := e.effectiveLocked(i)
		m := Match{Index: i, Start: seg.Start, End: seg.End, Text: text}
		if needle != "" {
			haystack := strings.ToLower(text)
			if !strings.Contains(haystack, needle) {
				continue
			}
			m.Spans = findSpans(haystack, needle)
		}
		matches = append(matches, m)
	}
	return matches
}

// findSpans returns the non-overlapping occurrences of needle in
// haystack as [start, end) byte offsets.
func findSpans(haystack, needle string) [][2]int {
	var spans [][2]int
	offset := 0
	for {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			return spans
		}
		start := offset + i
		spans = append(spans, [2]int{start, start + len(needle)})
		offset = start + len(needle)
	}
}
