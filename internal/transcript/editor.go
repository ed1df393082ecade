package transcript

import (
	"errors"
	"strings"
	"sync"
)

// Errors for invalid editor operations.
var (
	ErrIndexOutOfRange = errors.New("segment index out of range")
	ErrNotEditing      = errors.New("segment is not being edited")
)

// Editor layers user corrections over a parsed transcript without
// mutating the parse. Each segment is either Viewing or Editing; an
// in-progress scratch value exists only while Editing, and a committed
// correction lives in the overlay until ResetAll. The overlay is keyed
// by segment index into this transcript's parse, so an Editor must be
// discarded whenever a new transcription record is loaded.
//
// Per-segment transitions:
//
//	Viewing → Editing   BeginEdit
//	Editing → Viewing   CommitEdit or CancelEdit
//
// Overlay presence is orthogonal to the view state and survives it.
type Editor struct {
	mu      sync.Mutex
	tr      *Transcript
	overlay map[int]string
	scratch map[int]string
	edited  bool
}

// NewEditor creates an editor over the given parse with an empty overlay.
func NewEditor(tr *Transcript) *Editor {
	return &Editor{
		tr:      tr,
		overlay: make(map[int]string),
		scratch: make(map[int]string),
	}
}

// Format returns the wire shape the underlying transcript was parsed from.
func (e *Editor) Format() Format {
	return e.tr.Format
}

// Len returns the number of segments.
func (e *Editor) Len() int {
	return len(e.tr.Segments)
}

// Segment returns the immutable parsed segment at index.
func (e *Editor) Segment(index int) (Segment, error) {
	if index < 0 || index >= len(e.tr.Segments) {
		return Segment{}, ErrIndexOutOfRange
	}
	return e.tr.Segments[index], nil
}

// BeginEdit enters edit mode for a segment, seeding the scratch value
// from the overlay when a correction exists, else from the parsed text.
// Persisted state is untouched.
func (e *Editor) BeginEdit(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.tr.Segments) {
		return ErrIndexOutOfRange
	}
	e.scratch[index] = e.effectiveLocked(index)
	return nil
}

// UpdateScratch replaces the in-progress value for a segment in edit
// mode. Nothing is committed.
func (e *Editor) UpdateScratch(index int, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.tr.Segments) {
		return ErrIndexOutOfRange
	}
	if _, ok := e.scratch[index]; !ok {
		return ErrNotEditing
	}
	e.scratch[index] = value
	return nil
}

// CommitEdit exits edit mode for a segment. The scratch value is written
// into the overlay only when it differs from the parsed text; otherwise
// the overlay is left untouched.
func (e *Editor) CommitEdit(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.tr.Segments) {
		return ErrIndexOutOfRange
	}
	value, ok := e.scratch[index]
	if !ok {
		return ErrNotEditing
	}
	delete(e.scratch, index)
	if value != e.tr.Segments[index].Text {
		e.overlay[index] = value
		e.edited = true
	}
	return nil
}

// CancelEdit discards the scratch value and exits edit mode without
// touching the overlay.
func (e *Editor) CancelEdit(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.tr.Segments) {
		return ErrIndexOutOfRange
	}
	if _, ok := e.scratch[index]; !ok {
		return ErrNotEditing
	}
	delete(e.scratch, index)
	return nil
}

// ResetAll clears every correction, every in-progress edit, and the
// edited flag. All segments revert to their parsed text.
func (e *Editor) ResetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overlay = make(map[int]string)
	e.scratch = make(map[int]string)
	e.edited = false
}

// IsEditing reports whether the segment is currently in edit mode.
func (e *Editor) IsEditing(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.scratch[index]
	return ok
}

// IsOverridden reports whether a committed correction exists for the segment.
func (e *Editor) IsOverridden(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.overlay[index]
	return ok
}

// Edited reports whether any correction has been committed since the
// editor was created or last reset.
func (e *Editor) Edited() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.edited
}

// EffectiveText returns the overlay value when a correction exists, else
// the parsed text. Rendering, search, and reconstruction all read
// segment text through this path.
func (e *Editor) EffectiveText(index int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.tr.Segments) {
		return "", ErrIndexOutOfRange
	}
	return e.effectiveLocked(index), nil
}

func (e *Editor) effectiveLocked(index int) string {
	if value, ok := e.overlay[index]; ok {
		return value
	}
	return e.tr.Segments[index].Text
}

// Reconstruct flattens the transcript for submission to the evaluation
// service, applying committed corrections. Timestamp-bearing sources
// join segments with a newline, segmented-JSON sources with a single
// space; the single-segment shapes are returned as-is. Timestamp markup
// never survives - only text. Pure given the current overlay state.
func (e *Editor) Reconstruct() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.tr.Segments) == 0 {
		return ""
	}
	switch e.tr.Format {
	case FormatInlineTimestamps:
		return e.joinLocked("\n")
	case FormatSegmentedJSON:
		return e.joinLocked(" ")
	default:
		return e.effectiveLocked(0)
	}
}

func (e *Editor) joinLocked(sep string) string {
	parts := make([]string, len(e.tr.Segments))
	for i := range e.tr.Segments {
		parts[i] = e.effectiveLocked(i)
	}
	return strings.Join(parts, sep)
}
