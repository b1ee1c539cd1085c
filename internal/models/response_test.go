package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBilingualAnswer_JSONNullAudio(t *testing.T) {
	en := "/audio/r_answer_1_en.mp3"
	a := &BilingualAnswer{English: "text", Hindi: "पाठ", AudioEN: &en}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"audio_en":"/audio/r_answer_1_en.mp3"`) {
		t.Errorf("audio_en missing: %s", s)
	}
	// A failed synthesis serializes as an explicit null, never omitted.
	if !strings.Contains(s, `"audio_hi":null`) {
		t.Errorf("audio_hi not null: %s", s)
	}
}

func TestAskResponse_ErrorOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(&AskResponse{HinglishText: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "error") {
		t.Errorf("empty error not omitted: %s", data)
	}

	data, err = json.Marshal(&AskResponse{Error: "No speech detected"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"error":"No speech detected"`) {
		t.Errorf("error missing: %s", data)
	}
}

func TestMatchCandidate_AnswerText(t *testing.T) {
	c := &MatchCandidate{Metadata: map[string]string{"answer": "a", "text": "t"}}
	if got := c.AnswerText(); got != "a" {
		t.Errorf("got %q", got)
	}
	c = &MatchCandidate{Metadata: map[string]string{"text": "t"}}
	if got := c.AnswerText(); got != "t" {
		t.Errorf("got %q", got)
	}
	c = &MatchCandidate{}
	if got := c.AnswerText(); got != "" {
		t.Errorf("got %q", got)
	}
	var nilCand *MatchCandidate
	if got := nilCand.AnswerText(); got != "" {
		t.Errorf("got %q", got)
	}
}
