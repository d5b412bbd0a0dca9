package debate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Evaluation is the validated final judgment for an ended debate. Scores are
// always inside [0,100] by the time a caller sees them.
type Evaluation struct {
	Participants []ParticipantEvaluation `json:"participants"`
	Overall      OverallVerdict          `json:"overall"`
}

type ParticipantEvaluation struct {
	Name         string            `json:"name"`
	Scores       ParticipantScores `json:"scores"`
	Strengths    []string          `json:"strengths"`
	Improvements []string          `json:"improvements"`
}

type ParticipantScores struct {
	Reasoning      DimensionScore `json:"reasoning"`
	Evidence       DimensionScore `json:"evidence"`
	Persuasiveness DimensionScore `json:"persuasiveness"`
	Relevance      DimensionScore `json:"relevance"`
}

type DimensionScore struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type OverallVerdict struct {
	Winner        string  `json:"winner"`
	Reason        string  `json:"reason"`
	DebateQuality float64 `json:"debateQuality"`
	Summary       string  `json:"summary"`
}

// ParseError reports a model reply that could not be turned into a valid
// Evaluation. Raw carries the full reply for diagnostics.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing evaluation: %s: %v", e.Reason, e.Err)
	}
	return "parsing evaluation: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Intermediate shape with pointer fields so a missing dimension is
// distinguishable from a zero score.
type evalPayload struct {
	Participants []struct {
		Name   string `json:"name"`
		Scores map[string]*struct {
			Score    flexScore `json:"score"`
			Feedback string    `json:"feedback"`
		} `json:"scores"`
		Strengths    []string `json:"strengths"`
		Improvements []string `json:"improvements"`
	} `json:"participants"`
	Overall *struct {
		Winner        string    `json:"winner"`
		Reason        string    `json:"reason"`
		DebateQuality flexScore `json:"debateQuality"`
		Summary       string    `json:"summary"`
	} `json:"overall"`
}

var scoreDimensions = []string{"reasoning", "evidence", "persuasiveness", "relevance"}

// ParseEvaluation extracts and validates a structured judgment from raw model
// output. The reply is expected, but not guaranteed, to contain one JSON
// object; the span from the first '{' to the last '}' is taken as that
// object. Any shape deviation is a *ParseError, never a partial result.
func ParseEvaluation(raw string) (*Evaluation, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, &ParseError{Reason: "no JSON object in reply", Raw: raw}
	}

	var payload evalPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Raw: raw, Err: err}
	}

	if len(payload.Participants) == 0 {
		return nil, &ParseError{Reason: "no participants in evaluation", Raw: raw}
	}
	if payload.Overall == nil {
		return nil, &ParseError{Reason: "missing overall verdict", Raw: raw}
	}
	if payload.Overall.Winner == "" {
		return nil, &ParseError{Reason: "missing overall.winner", Raw: raw}
	}

	eval := &Evaluation{
		Overall: OverallVerdict{
			Winner:        payload.Overall.Winner,
			Reason:        payload.Overall.Reason,
			DebateQuality: clampScore(float64(payload.Overall.DebateQuality)),
			Summary:       payload.Overall.Summary,
		},
	}

	for _, p := range payload.Participants {
		if p.Name == "" {
			return nil, &ParseError{Reason: "participant with empty name", Raw: raw}
		}
		pe := ParticipantEvaluation{
			Name:         p.Name,
			Strengths:    emptyIfNil(p.Strengths),
			Improvements: emptyIfNil(p.Improvements),
		}
		for _, dim := range scoreDimensions {
			ds, ok := p.Scores[dim]
			if !ok || ds == nil {
				return nil, &ParseError{
					Reason: fmt.Sprintf("participant %q missing %s score", p.Name, dim),
					Raw:    raw,
				}
			}
			score := DimensionScore{Score: clampScore(float64(ds.Score)), Feedback: ds.Feedback}
			switch dim {
			case "reasoning":
				pe.Scores.Reasoning = score
			case "evidence":
				pe.Scores.Evidence = score
			case "persuasiveness":
				pe.Scores.Persuasiveness = score
			case "relevance":
				pe.Scores.Relevance = score
			}
		}
		eval.Participants = append(eval.Participants, pe)
	}

	return eval, nil
}

// UnknownParticipants cross-checks evaluated names against the debate's
// actual participant list and returns the names the model invented.
func UnknownParticipants(eval *Evaluation, participants []string) []string {
	known := make(map[string]bool, len(participants))
	for _, p := range participants {
		known[strings.ToLower(p)] = true
	}
	var unknown []string
	for _, pe := range eval.Participants {
		if !known[strings.ToLower(pe.Name)] {
			unknown = append(unknown, pe.Name)
		}
	}
	return unknown
}

// clampScore forces a score into the displayable 0-100 range. The model
// cannot be trusted to obey its own schema.
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// flexScore accepts a JSON number or a numeric string ("85", "85/100" is
// still rejected). Models quote their numbers often enough to care.
type flexScore float64

func (s *flexScore) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 1 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("score %q is not numeric", str)
		}
		*s = flexScore(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = flexScore(v)
	return nil
}
