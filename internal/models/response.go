package models

// BilingualAnswer is one answer rendered in both languages with optional
// audio references. Audio fields are nil when synthesis failed for that
// language; each language is decided independently.
type BilingualAnswer struct {
	English string  `json:"english"`
	Hindi   string  `json:"hindi"`
	AudioEN *string `json:"audio_en"`
	AudioHI *string `json:"audio_hi"`
}

// AskResponse is the payload returned by POST /ask. On detected failure
// conditions (no speech, index unreachable) only Error is set; the HTTP
// status is still 200.
type AskResponse struct {
	HinglishText  string             `json:"hinglish_text,omitempty"`
	SearchQueries []string           `json:"search_queries,omitempty"`
	Answers       []*BilingualAnswer `json:"answers,omitempty"`
	Error         string             `json:"error,omitempty"`
}
