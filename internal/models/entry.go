// Package models defines the data types shared across the KissanVaani pipeline.
package models

import "time"

// QAEntry is one question/answer pair in the agricultural corpus.
type QAEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Crop      string    `json:"crop,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// MatchCandidate is a single scored hit from one query's vector search.
// Ordering across searches is not meaningful; only Score is comparable.
type MatchCandidate struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AnswerText returns the answer attached to the candidate's metadata, trying
// the "answer" field first and falling back to the generic "text" field.
// Returns "" when neither is present.
func (m *MatchCandidate) AnswerText() string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	if s := m.Metadata["answer"]; s != "" {
		return s
	}
	return m.Metadata["text"]
}
