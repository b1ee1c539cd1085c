package retrieval

import (
	"fmt"
	"testing"

	"github.com/kissanvaani/kissanvaani/internal/models"
)

func cand(id string, score float64) *models.MatchCandidate {
	return &models.MatchCandidate{ID: id, Score: score}
}

func TestMerge_DedupeKeepsMaxScore(t *testing.T) {
	in := []*models.MatchCandidate{
		cand("a", 0.7),
		cand("b", 0.5),
		cand("a", 0.9),
	}
	got := Merge(in, 3)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Score != 0.9 {
		t.Errorf("got[0] = %s/%v, want a/0.9", got[0].ID, got[0].Score)
	}
	if got[1].ID != "b" || got[1].Score != 0.5 {
		t.Errorf("got[1] = %s/%v, want b/0.5", got[1].ID, got[1].Score)
	}
}

func TestMerge_StableOnTies(t *testing.T) {
	in := []*models.MatchCandidate{
		cand("x", 0.5),
		cand("y", 0.5),
		cand("z", 0.5),
	}
	got := Merge(in, 3)
	for i, id := range []string{"x", "y", "z"} {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestMerge_TruncatesToMax(t *testing.T) {
	var in []*models.MatchCandidate
	for i := 0; i < 10; i++ {
		in = append(in, cand(fmt.Sprintf("id%d", i), float64(i)*0.1))
	}
	got := Merge(in, 3)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	// Highest scores win.
	if got[0].ID != "id9" || got[1].ID != "id8" || got[2].ID != "id7" {
		t.Errorf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestMerge_MetadataFromFirstAppearance(t *testing.T) {
	first := &models.MatchCandidate{ID: "a", Score: 0.3, Metadata: map[string]string{"answer": "first"}}
	second := &models.MatchCandidate{ID: "a", Score: 0.8, Metadata: map[string]string{"answer": "second"}}
	got := Merge([]*models.MatchCandidate{first, second}, 3)
	if len(got) != 1 {
		t.Fatalf("got %d candidates", len(got))
	}
	if got[0].Score != 0.8 {
		t.Errorf("score = %v, want 0.8", got[0].Score)
	}
	if got[0].Metadata["answer"] != "first" {
		t.Errorf("metadata = %v, want first appearance kept", got[0].Metadata)
	}
}

func TestMerge_Empty(t *testing.T) {
	got := Merge(nil, 3)
	if len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
}
