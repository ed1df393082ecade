package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

// sessionRow is one row of the session_state table: a key, the whole
// JSON value stored under it, and the write time.
type sessionRow struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SupabaseStore keeps the session slots in a Supabase session_state
// table, upserting whole values keyed by the localStorage key names.
// Selected when SUPABASE_URL/SUPABASE_KEY are configured; the semantics
// match FileStore (whole-value overwrite, last write wins).
type SupabaseStore struct {
	client *supa.Client
}

// NewSupabaseStore connects to the Supabase project at url.
func NewSupabaseStore(url, apiKey string) (*SupabaseStore, error) {
	client, err := supa.NewClient(url, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// Get reads the newest value stored under key into out.
func (s *SupabaseStore) Get(key string, out interface{}) error {
	body, _, err := s.client.From("session_state").
		Select("*", "", false).
		Eq("key", key).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		Execute()
	if err != nil {
		return fmt.Errorf("fetching %s: %w", key, err)
	}

	var rows []sessionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decoding rows for %s: %w", key, err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(rows[0].Value, out); err != nil {
		return fmt.Errorf("decoding stored value for %s: %w", key, err)
	}
	return nil
}

// Set upserts the whole value under key.
func (s *SupabaseStore) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", key, err)
	}
	row := sessionRow{Key: key, Value: raw, UpdatedAt: time.Now().UTC()}
	_, _, err = s.client.From("session_state").
		Insert(row, true, "key", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// Delete removes the value under key.
func (s *SupabaseStore) Delete(key string) error {
	_, _, err := s.client.From("session_state").
		Delete("", "").
		Eq("key", key).
		Execute()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}
