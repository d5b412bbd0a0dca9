package debate

import (
	"fmt"
	"strings"
)

// CriteriaWeights is the evaluation weighting per scored dimension.
// The three weights sum to 1.0 for every tier.
type CriteriaWeights struct {
	Reasoning      float64 `json:"reasoning"`
	Evidence       float64 `json:"evidence"`
	Persuasiveness float64 `json:"persuasiveness"`
}

// Profile bundles the generation parameters and scoring weights for one
// difficulty tier. Profiles are defined at process start and never mutated.
type Profile struct {
	Tier         string          `json:"tier"`
	Temperature  float64         `json:"temperature"`
	TopP         float64         `json:"topP"`
	MaxTokens    int             `json:"maxTokens"`
	SystemPrompt string          `json:"-"`
	Weights      CriteriaWeights `json:"evaluationCriteria"`
	MinWords     int             `json:"minWords"`
	MaxWords     int             `json:"maxWords"`
}

var profiles = map[string]Profile{
	"easy": {
		Tier:        "easy",
		Temperature: 0.9,
		TopP:        0.9,
		MaxTokens:   512,
		SystemPrompt: "You are participating in a beginner-friendly debate. Keep your responses simple, " +
			"focused on basic arguments, and be somewhat forgiving in your counterpoints. Use clear, " +
			"straightforward language and avoid complex terminology. Maintain a helpful and educational tone.",
		Weights:  CriteriaWeights{Reasoning: 0.3, Evidence: 0.3, Persuasiveness: 0.4},
		MinWords: 20,
		MaxWords: 200,
	},
	"intermediate": {
		Tier:        "intermediate",
		Temperature: 0.7,
		TopP:        0.95,
		MaxTokens:   768,
		SystemPrompt: "You are participating in an intermediate-level debate. Use balanced arguments with " +
			"moderate complexity. Present clear evidence and logical reasoning. Challenge the opponent's " +
			"points while maintaining a constructive dialogue.",
		Weights:  CriteriaWeights{Reasoning: 0.35, Evidence: 0.35, Persuasiveness: 0.3},
		MinWords: 30,
		MaxWords: 400,
	},
	"hard": {
		Tier:        "hard",
		Temperature: 0.5,
		TopP:        1.0,
		MaxTokens:   1024,
		SystemPrompt: "You are participating in a high-level debate. Use sophisticated arguments, complex " +
			"reasoning, and detailed evidence. Challenge logical fallacies, demand precise definitions, and " +
			"maintain rigorous academic standards. Show expert-level knowledge while keeping responses " +
			"concise and impactful.",
		Weights:  CriteriaWeights{Reasoning: 0.4, Evidence: 0.4, Persuasiveness: 0.2},
		MinWords: 50,
		MaxWords: 800,
	},
}

// Tiers returns the known tier names.
func Tiers() []string {
	return []string{"easy", "intermediate", "hard"}
}

// ResolveProfile looks up a tier case-insensitively. Anything not in
// {easy, intermediate, hard} resolves to the intermediate profile; the
// permissive default is deliberate, not an error.
func ResolveProfile(tier string) Profile {
	if p, ok := profiles[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return p
	}
	return profiles["intermediate"]
}

// LengthCheck is the advisory result of a word-count validation.
type LengthCheck struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ValidateLength checks an argument's word count against the tier's band.
// It is a pre-submission advisory check and never fails hard.
func ValidateLength(text, tier string) LengthCheck {
	p := ResolveProfile(tier)
	words := len(strings.Fields(text))

	switch {
	case words < p.MinWords:
		return LengthCheck{
			Valid: false,
			Message: fmt.Sprintf("Your argument is too short. Please provide at least %d words for %s difficulty.",
				p.MinWords, p.Tier),
		}
	case words > p.MaxWords:
		return LengthCheck{
			Valid: false,
			Message: fmt.Sprintf("Your argument is too long. Please keep it under %d words for %s difficulty.",
				p.MaxWords, p.Tier),
		}
	default:
		return LengthCheck{Valid: true, Message: "Valid argument length"}
	}
}
