// Package store persists the session's workflow state as whole JSON
// values under fixed keys, mirroring the browser localStorage the web
// client uses. Writes always replace the full value; there are no
// partial merges.
package store

import "errors"

// Keys for the session state slots. Names match the web client's
// localStorage keys so both front ends share the same vocabulary.
const (
	KeyLastTranscription = "lastTranscription"
	KeyPitchEvaluation   = "pitchEvaluation"
	KeyMarketResearch    = "marketResearch"
	KeyUser              = "peachme-user"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("no value stored under key")

// Store reads and writes whole-value session records. Set overwrites
// any previous value under the key.
type Store interface {
	Get(key string, out interface{}) error
	Set(key string, value interface{}) error
	Delete(key string) error
}
