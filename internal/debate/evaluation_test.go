package debate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func wellFormedReply(names ...string) string {
	var parts []string
	for i, n := range names {
		parts = append(parts, fmt.Sprintf(`{
			"name": %q,
			"scores": {
				"reasoning": {"score": %d, "feedback": "solid logic"},
				"evidence": {"score": %d, "feedback": "good sourcing"},
				"persuasiveness": {"score": %d, "feedback": "compelling"},
				"relevance": {"score": %d, "feedback": "on topic"}
			},
			"strengths": ["clarity"],
			"improvements": ["more data"]
		}`, n, 80+i, 70+i, 75+i, 90+i))
	}
	return fmt.Sprintf(`Here is my evaluation of the debate:

{
	"participants": [%s],
	"overall": {
		"winner": %q,
		"reason": "stronger evidence throughout",
		"debateQuality": 82,
		"summary": "a well-fought debate"
	}
}

I hope this helps!`, strings.Join(parts, ","), names[0])
}

func TestParseEvaluationWellFormed(t *testing.T) {
	eval, err := ParseEvaluation(wellFormedReply("Alice", "Bob"))
	if err != nil {
		t.Fatalf("ParseEvaluation: %v", err)
	}
	if len(eval.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(eval.Participants))
	}
	if eval.Participants[0].Name != "Alice" || eval.Participants[1].Name != "Bob" {
		t.Errorf("names = %q, %q", eval.Participants[0].Name, eval.Participants[1].Name)
	}
	if eval.Participants[0].Scores.Reasoning.Score != 80 {
		t.Errorf("Alice reasoning = %f, want 80", eval.Participants[0].Scores.Reasoning.Score)
	}
	if eval.Overall.Winner != "Alice" {
		t.Errorf("winner = %q, want Alice", eval.Overall.Winner)
	}
	if eval.Overall.DebateQuality != 82 {
		t.Errorf("debateQuality = %f, want 82", eval.Overall.DebateQuality)
	}
}

func TestParseEvaluationRoundTrip(t *testing.T) {
	eval, err := ParseEvaluation(wellFormedReply("Alice", "Bob"))
	if err != nil {
		t.Fatalf("ParseEvaluation: %v", err)
	}

	data, err := json.Marshal(eval)
	if err != nil {
		t.Fatalf("marshaling: %v", err)
	}
	var again Evaluation
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("unmarshaling: %v", err)
	}

	for i := range eval.Participants {
		if again.Participants[i].Name != eval.Participants[i].Name {
			t.Errorf("participant %d name changed in round trip", i)
		}
		if again.Participants[i].Scores != eval.Participants[i].Scores {
			t.Errorf("participant %d scores changed in round trip", i)
		}
	}
	for _, p := range again.Participants {
		for _, s := range []float64{
			p.Scores.Reasoning.Score, p.Scores.Evidence.Score,
			p.Scores.Persuasiveness.Score, p.Scores.Relevance.Score,
		} {
			if s < 0 || s > 100 {
				t.Errorf("score %f outside [0,100]", s)
			}
		}
	}
}

func TestParseEvaluationClampsScores(t *testing.T) {
	raw := `{
		"participants": [{
			"name": "Alice",
			"scores": {
				"reasoning": {"score": 250, "feedback": ""},
				"evidence": {"score": -10, "feedback": ""},
				"persuasiveness": {"score": "88", "feedback": ""},
				"relevance": {"score": 100.5, "feedback": ""}
			}
		}],
		"overall": {"winner": "Alice", "reason": "", "debateQuality": 120, "summary": ""}
	}`
	eval, err := ParseEvaluation(raw)
	if err != nil {
		t.Fatalf("ParseEvaluation: %v", err)
	}
	s := eval.Participants[0].Scores
	if s.Reasoning.Score != 100 {
		t.Errorf("reasoning = %f, want clamped 100", s.Reasoning.Score)
	}
	if s.Evidence.Score != 0 {
		t.Errorf("evidence = %f, want clamped 0", s.Evidence.Score)
	}
	if s.Persuasiveness.Score != 88 {
		t.Errorf("persuasiveness = %f, want 88 from quoted number", s.Persuasiveness.Score)
	}
	if s.Relevance.Score != 100 {
		t.Errorf("relevance = %f, want clamped 100", s.Relevance.Score)
	}
	if eval.Overall.DebateQuality != 100 {
		t.Errorf("debateQuality = %f, want clamped 100", eval.Overall.DebateQuality)
	}
	if eval.Participants[0].Strengths == nil || eval.Participants[0].Improvements == nil {
		t.Error("strengths/improvements should be empty slices, not nil")
	}
}

func TestParseEvaluationFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no JSON at all", "The debate was great, Alice wins!"},
		{"unbalanced braces", "score {not json"},
		{"invalid JSON", `{"participants": [}`},
		{"empty participants", `{"participants": [], "overall": {"winner": "x"}}`},
		{"missing overall", `{"participants": [{"name": "Alice", "scores": {}}]}`},
		{"missing winner", `{"participants": [{"name": "Alice", "scores": {}}], "overall": {"reason": "r"}}`},
		{"missing dimension", `{
			"participants": [{
				"name": "Alice",
				"scores": {
					"reasoning": {"score": 80, "feedback": ""},
					"evidence": {"score": 70, "feedback": ""},
					"persuasiveness": {"score": 75, "feedback": ""}
				}
			}],
			"overall": {"winner": "Alice", "reason": "", "debateQuality": 80, "summary": ""}
		}`},
		{"non-numeric score", `{
			"participants": [{
				"name": "Alice",
				"scores": {
					"reasoning": {"score": "excellent", "feedback": ""},
					"evidence": {"score": 70, "feedback": ""},
					"persuasiveness": {"score": 75, "feedback": ""},
					"relevance": {"score": 90, "feedback": ""}
				}
			}],
			"overall": {"winner": "Alice", "reason": "", "debateQuality": 80, "summary": ""}
		}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEvaluation(tc.raw)
			if err == nil {
				t.Fatal("expected a parse error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error type %T, want *ParseError", err)
			}
			if perr.Raw != tc.raw {
				t.Error("ParseError should carry the raw reply")
			}
		})
	}
}

func TestUnknownParticipants(t *testing.T) {
	eval, err := ParseEvaluation(wellFormedReply("Alice", "Participant 2"))
	if err != nil {
		t.Fatalf("ParseEvaluation: %v", err)
	}

	unknown := UnknownParticipants(eval, []string{"Alice", "Bob"})
	if len(unknown) != 1 || unknown[0] != "Participant 2" {
		t.Errorf("unknown = %v, want [Participant 2]", unknown)
	}

	// Case differences are not mismatches.
	if unknown := UnknownParticipants(eval, []string{"alice", "participant 2"}); len(unknown) != 0 {
		t.Errorf("unknown = %v, want none", unknown)
	}
}
