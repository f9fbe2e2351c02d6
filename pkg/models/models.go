package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TypeMovie is the listing type label of a single film; anything else is a series.
const TypeMovie = "Movie"

// EntityIDKey is the JSON key of the derived entity id in a merged record.
const EntityIDKey = "movie_id"

// CandidateRecord is one catalog card discovered on a listing page
type CandidateRecord struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	Quality  string `json:"quality"`
	Type     string `json:"type"`
	Year     string `json:"year"`
	Season   string `json:"season"`
	Episode  string `json:"episode"`
	Duration string `json:"duration"`
	Score    int    `json:"score"`
	Like     int    `json:"like"`
	Dislike  int    `json:"dislike"`
}

// IsSeries reports whether the candidate carries season/episode markers.
// A card without a type label counts as a series.
func (c CandidateRecord) IsSeries() bool {
	return c.Type != TypeMovie
}

// candidateKeys lists the JSON keys owned by CandidateRecord, in encoding order.
var candidateKeys = []string{
	"title", "url", "image", "quality", "type", "year",
	"season", "episode", "duration", "score", "like", "dislike",
}

// IsCandidateKey reports whether key is a listing-level field
func IsCandidateKey(key string) bool {
	for _, k := range candidateKeys {
		if k == key {
			return true
		}
	}
	return false
}

// DetailRecord holds free-form enrichment fields fetched from a record's own page.
// An empty DetailRecord is the result of a failed or blank fetch.
type DetailRecord map[string]interface{}

// MergedRecord is a candidate joined with its detail fields and derived entity id
type MergedRecord struct {
	CandidateRecord
	// Detail never contains candidate keys or EntityIDKey.
	Detail   DetailRecord
	EntityID *string
}

// Locator returns the identity key of the record
func (r MergedRecord) Locator() string {
	return r.URL
}

// MarshalJSON writes candidate fields first, then detail fields in key order,
// then the entity id (null when absent).
func (r MergedRecord) MarshalJSON() ([]byte, error) {
	base, err := marshalNoEscape(r.CandidateRecord)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])

	keys := make([]string, 0, len(r.Detail))
	for k := range r.Detail {
		if IsCandidateKey(k) || k == EntityIDKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(r.Detail[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode detail field %q: %w", k, err)
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}

	id, err := marshalNoEscape(r.EntityID)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`,"` + EntityIDKey + `":`)
	buf.Write(id)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON splits a flat record back into candidate, detail and entity id parts
func (r *MergedRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var candidate CandidateRecord
	if err := json.Unmarshal(data, &candidate); err != nil {
		return err
	}

	var entityID *string
	if raw, ok := fields[EntityIDKey]; ok {
		if err := json.Unmarshal(raw, &entityID); err != nil {
			return fmt.Errorf("invalid %s: %w", EntityIDKey, err)
		}
	}

	detail := make(DetailRecord)
	for k, raw := range fields {
		if IsCandidateKey(k) || k == EntityIDKey {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("invalid detail field %q: %w", k, err)
		}
		detail[k] = v
	}

	r.CandidateRecord = candidate
	r.Detail = detail
	r.EntityID = entityID
	return nil
}

// Collection is the ordered, append-only set of merged records persisted as one snapshot
type Collection []MergedRecord

// KeySet is the set of known locators
type KeySet map[string]struct{}

// NewKeySet creates an empty key set sized for n entries
func NewKeySet(n int) KeySet {
	return make(KeySet, n)
}

// Has reports whether locator is known
func (s KeySet) Has(locator string) bool {
	_, ok := s[locator]
	return ok
}

// Add marks locator as known
func (s KeySet) Add(locator string) {
	s[locator] = struct{}{}
}

// Len returns the number of known locators
func (s KeySet) Len() int {
	return len(s)
}

// marshalNoEscape encodes v without HTML escaping so titles keep '&', '<' and '>' verbatim.
func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(strings.TrimSuffix(buf.String(), "\n")), nil
}
