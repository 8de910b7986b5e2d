package session

import "time"

type ResponseKind string

const (
	ResponseChoice    ResponseKind = "choice"
	ResponseText      ResponseKind = "text"
	ResponseRecording ResponseKind = "recording"
)

// Response is a learner's answer to one question or task. The value shape
// depends on the item type: a selected option index, free text, or an opaque
// recorded-audio handle.
type Response struct {
	Kind        ResponseKind `json:"kind"`
	OptionIndex int          `json:"option_index,omitempty"`
	Text        string       `json:"text,omitempty"`
	RecordingID string       `json:"recording_id,omitempty"`
	RecordedAt  time.Time    `json:"recorded_at"`
}

// ResponseStore maps item identifiers to the latest response. Record
// overwrites unconditionally; the store keeps no history and performs no
// validation. Freezing answers behind the furthest-reached mark is the
// engine's job, not the store's.
type ResponseStore struct {
	values map[string]Response
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{values: make(map[string]Response)}
}

// Record stores the response for the item, replacing any prior value.
func (s *ResponseStore) Record(itemID string, resp Response) {
	resp.RecordedAt = time.Now()
	s.values[itemID] = resp
}

// Get returns the current response and whether the item has been answered.
func (s *ResponseStore) Get(itemID string) (Response, bool) {
	resp, ok := s.values[itemID]
	return resp, ok
}

// Answered reports whether a response exists for the item.
func (s *ResponseStore) Answered(itemID string) bool {
	_, ok := s.values[itemID]
	return ok
}

// Len returns the number of answered items.
func (s *ResponseStore) Len() int {
	return len(s.values)
}

// All returns a copy of the stored responses keyed by item ID.
func (s *ResponseStore) All() map[string]Response {
	out := make(map[string]Response, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
