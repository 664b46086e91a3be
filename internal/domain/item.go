package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Item is a lost or found item record supplied by the caller.
// The original JSON object is kept so it can be echoed back untouched,
// including fields this service does not know about (user_id, dates, ...).
type Item struct {
	ID          string `json:"-"`
	Title       string `json:"-"`
	Category    string `json:"-"`
	Description string `json:"-"`
	Location    string `json:"-"`

	rawID json.RawMessage
	raw   json.RawMessage
}

type itemFields struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
}

// UnmarshalJSON decodes the known fields and keeps the raw object.
func (i *Item) UnmarshalJSON(data []byte) error {
	var f itemFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	i.ID = rawToString(f.ID)
	i.rawID = nil
	if id := bytes.TrimSpace(f.ID); len(id) > 0 && string(id) != "null" {
		i.rawID = append(json.RawMessage(nil), id...)
	}
	i.Title = f.Title
	i.Category = f.Category
	i.Description = f.Description
	i.Location = f.Location
	i.raw = append(i.raw[:0], data...)
	return nil
}

// MarshalJSON returns the caller's object verbatim when available.
func (i Item) MarshalJSON() ([]byte, error) {
	if len(i.raw) > 0 {
		return i.raw, nil
	}
	out := map[string]string{}
	if i.ID != "" {
		out["id"] = i.ID
	}
	if i.Title != "" {
		out["title"] = i.Title
	}
	if i.Category != "" {
		out["category"] = i.Category
	}
	if i.Description != "" {
		out["description"] = i.Description
	}
	if i.Location != "" {
		out["location"] = i.Location
	}
	return json.Marshal(out)
}

// Empty reports whether the item is missing or an empty object.
func (i *Item) Empty() bool {
	if i == nil {
		return true
	}
	if i.ID != "" || i.Title != "" || i.Category != "" || i.Description != "" || i.Location != "" {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(i.raw, &fields); err != nil {
		return true
	}
	return len(fields) == 0
}

// IDJSON returns the id exactly as the caller sent it, nil when absent.
func (i *Item) IDJSON() json.RawMessage {
	if i == nil {
		return nil
	}
	if len(i.rawID) > 0 {
		return i.rawID
	}
	if i.ID == "" {
		return nil
	}
	id, _ := json.Marshal(i.ID)
	return id
}

func rawToString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// ItemMatch is a candidate item ranked against a query item.
type ItemMatch struct {
	Item            Item    `json:"item"`
	Similarity      float64 `json:"similarity"`
	MatchPercentage float64 `json:"match_percentage"`
}

// MatchRequest is the body of POST /match.
type MatchRequest struct {
	QueryItem      *Item    `json:"query_item"`
	CandidateItems []Item   `json:"candidate_items"`
	Threshold      *float64 `json:"threshold,omitempty"`
	TopK           *int     `json:"top_k,omitempty" binding:"omitempty,gte=1"`
}

// SimilarityRequest is the body of POST /similarity.
type SimilarityRequest struct {
	Item1 *Item `json:"item1"`
	Item2 *Item `json:"item2"`
}

// EmbedRequest is the body of POST /embed.
type EmbedRequest struct {
	Item *Item `json:"item"`
}

// ItemMatchResult is the response of POST /match.
type ItemMatchResult struct {
	Success         bool            `json:"success"`
	Matches         []ItemMatch     `json:"matches"`
	QueryItemID     json.RawMessage `json:"query_item_id"`
	TotalCandidates *int            `json:"total_candidates,omitempty"`
	MatchesFound    *int            `json:"matches_found,omitempty"`
	Message         string          `json:"message,omitempty"`
}

// SimilarityResult is the response of POST /similarity.
type SimilarityResult struct {
	Success         bool    `json:"success"`
	Similarity      float64 `json:"similarity"`
	MatchPercentage float64 `json:"match_percentage"`
}

// EmbeddingResult is the response of POST /embed.
type EmbeddingResult struct {
	Success   bool      `json:"success"`
	Embedding []float32 `json:"embedding"`
	Dimension int       `json:"dimension"`
}
