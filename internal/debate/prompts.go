package debate

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/debatearena/internal/db"
	"github.com/hazyhaar/debatearena/internal/llm"
)

// Prompt builders are pure: (debate snapshot, task kind) -> message sequence.
// Every sequence opens with a system message carrying the tier's instruction
// text plus whatever the context retriever surfaced.

// OpponentReplyPrompt asks the model to answer the human's latest argument
// with a counter-argument or supporting point.
func OpponentReplyPrompt(topic string, p Profile, retrieved, argument string) []llm.Message {
	system := fmt.Sprintf(
		`You are participating in a debate on %q. %sProvide a concise, well-reasoned counterargument or supporting point in a natural, human-like style. Keep your response under 3 sentences.`,
		topic, retrieved)

	return []llm.Message{
		{Role: "system", Content: p.SystemPrompt + "\n\n" + system},
		{Role: "user", Content: argument},
	}
}

// PairwiseEvalPrompt asks for a short comparative judgment of the two most
// recent arguments, naming the more persuasive side.
func PairwiseEvalPrompt(topic string, p Profile, first, second db.Argument) []llm.Message {
	system := fmt.Sprintf(
		`You are a debate judge evaluating arguments on %q. Analyze the strength of reasoning, evidence, and rhetoric. Provide a concise evaluation (2-3 sentences) in a natural, human-like style and indicate which argument was more persuasive.`,
		topic)

	user := fmt.Sprintf(
		"Participant 1 (%s): %s\n\nParticipant 2 (%s): %s\n\nPlease evaluate these arguments.",
		first.Participant, first.Body, second.Participant, second.Body)

	return []llm.Message{
		{Role: "system", Content: p.SystemPrompt + "\n\n" + system},
		{Role: "user", Content: user},
	}
}

// evaluationSchema is the JSON shape the final evaluation must follow. The
// parser in evaluation.go validates against the same shape.
const evaluationSchema = `{
    "participants": [
        {
            "name": "participant1_name",
            "scores": {
                "reasoning": {
                    "score": number (0-100),
                    "feedback": "specific feedback on logical structure and argumentation"
                },
                "evidence": {
                    "score": number (0-100),
                    "feedback": "feedback on use of facts and examples"
                },
                "persuasiveness": {
                    "score": number (0-100),
                    "feedback": "feedback on rhetoric and delivery"
                },
                "relevance": {
                    "score": number (0-100),
                    "feedback": "feedback on topic adherence and focus"
                }
            },
            "strengths": ["list", "of", "key", "strengths"],
            "improvements": ["areas", "for", "improvement"]
        }
    ],
    "overall": {
        "winner": "participant_name",
        "reason": "detailed explanation of why this participant won",
        "debateQuality": number (0-100),
        "summary": "brief overall debate quality assessment"
    }
}`

// FinalEvalPrompt asks for a machine-parseable judgment over the whole
// debate. Entries already produced by the final evaluator are excluded so an
// earlier verdict can never feed back into a new one.
func FinalEvalPrompt(topic string, p Profile, args []db.Argument) []llm.Message {
	var transcript strings.Builder
	for _, a := range args {
		if a.Role == string(RoleAIFinal) {
			continue
		}
		fmt.Fprintf(&transcript, "%s: %s\n\n", a.Participant, a.Body)
	}

	user := fmt.Sprintf(
		`Evaluate the following debate on %q as a professional debate judge. Analyze each participant's performance and provide detailed scoring.

Debate Context:
Topic: %q
Difficulty Level: %s

Arguments:
%s
Provide a detailed evaluation in JSON format:
%s`,
		topic, topic, p.Tier, transcript.String(), evaluationSchema)

	return []llm.Message{
		{Role: "system", Content: p.SystemPrompt},
		{Role: "user", Content: user},
	}
}
