package debate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/debatearena/internal/db"
	"github.com/hazyhaar/debatearena/internal/llm"
)

// Orchestrator decides, for each submitted argument, whether an AI reply or a
// pairwise evaluation must be produced, and runs the final evaluation when a
// debate ends. Each submission runs to completion under the debate's lock.
type Orchestrator struct {
	store     *Store
	retriever ContextRetriever
	gateway   *Gateway
	logger    *slog.Logger
}

func NewOrchestrator(store *Store, retriever ContextRetriever, gateway *Gateway, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{store: store, retriever: retriever, gateway: gateway, logger: logger}
}

// Store exposes the underlying session store for read-side callers.
func (o *Orchestrator) Store() *Store { return o.store }

// SubmitResult is what one argument submission produced.
type SubmitResult struct {
	Argument   *db.Argument `json:"argument"`
	AIResponse *string      `json:"aiResponse,omitempty"`
	Evaluation *string      `json:"evaluation,omitempty"`
}

// SubmitArgument validates the submission, appends the argument, and fires
// whichever automated follow-up the debate's mode calls for. A gateway
// failure degrades to the fallback reply; it never fails the request.
func (o *Orchestrator) SubmitArgument(ctx context.Context, debateID, participant, text string) (*SubmitResult, error) {
	unlock := o.store.Lock(debateID)
	defer unlock()

	d, err := o.store.Get(debateID)
	if err != nil {
		return nil, err
	}
	if d.Status == StatusEnded {
		return nil, ErrDebateEnded
	}
	if !HasParticipant(d, participant) {
		return nil, ErrParticipantNotFound
	}

	entry, err := o.store.Append(debateID, Human(participant), text)
	if err != nil {
		return nil, err
	}
	profile := ResolveProfile(d.Difficulty)
	result := &SubmitResult{Argument: entry}

	// Count human turns only: judge entries interleave with the exchange and
	// must not shift the even/odd parity of the pair trigger.
	humanCount := 1
	var lastHuman *db.Argument
	for i := range d.Arguments {
		if d.Arguments[i].Role == string(RoleHuman) {
			humanCount++
			lastHuman = &d.Arguments[i]
		}
	}

	// Human-vs-AI: the assistant answers every human turn.
	if d.Mode == ModeHumanVsAI && participant != AIAssistantName {
		retrieved := o.retriever.Retrieve(d.Topic, text)
		reply := o.completeOrFallback(ctx, OpponentReplyPrompt(d.Topic, profile, retrieved, text), profile)
		if _, err := o.store.Append(debateID, AIReply(), reply); err != nil {
			return nil, err
		}
		result.AIResponse = &reply
	}

	// Human-vs-human: the judge weighs in after each complete exchange pair.
	// The even-count trigger is the mode's turn-taking contract.
	if d.Mode == ModeHumanVsHuman && humanCount%2 == 0 && lastHuman != nil {
		verdict := o.completeOrFallback(ctx, PairwiseEvalPrompt(d.Topic, profile, *lastHuman, *entry), profile)
		if _, err := o.store.Append(debateID, AIJudge(), verdict); err != nil {
			return nil, err
		}
		result.Evaluation = &verdict
	}

	return result, nil
}

// EndResult is the outcome of ending a debate. Detailed is omitted, not
// null, when the final evaluation could not be parsed, so consumers can tell
// "nothing to evaluate" from "evaluation attempted and failed".
type EndResult struct {
	FinalEvaluation *string     `json:"finalEvaluation,omitempty"`
	Detailed        *Evaluation `json:"detailedEvaluation,omitempty"`
}

// EndDebate transitions a debate to ended and produces the final structured
// evaluation. The state change is never rolled back by a downstream parse
// failure; re-ending an already-ended debate is rejected.
func (o *Orchestrator) EndDebate(ctx context.Context, debateID string) (*EndResult, error) {
	unlock := o.store.Lock(debateID)
	defer unlock()

	d, err := o.store.Get(debateID)
	if err != nil {
		return nil, err
	}
	if err := o.store.MarkEnded(debateID); err != nil {
		return nil, err
	}

	result := &EndResult{}
	if len(d.Arguments) == 0 {
		return result, nil
	}

	profile := ResolveProfile(d.Difficulty)
	messages := FinalEvalPrompt(d.Topic, profile, d.Arguments)

	text, aiErr := o.gateway.Complete(ctx, messages, profile)
	if aiErr != nil {
		// Debate stays ended; the evaluation is simply absent.
		o.logger.Error("final evaluation unavailable", "debate_id", debateID, "error", aiErr)
		return result, nil
	}

	eval, text := o.parseWithRetry(ctx, d, messages, profile, text)

	if _, err := o.store.Append(debateID, AIFinal(), text); err != nil {
		return nil, err
	}
	result.FinalEvaluation = &text

	if eval != nil {
		result.Detailed = eval
		if payload, err := json.Marshal(eval); err == nil {
			if err := o.store.SaveEvaluation(debateID, string(payload)); err != nil {
				o.logger.Error("saving evaluation", "debate_id", debateID, "error", err)
			}
		}
	}
	return result, nil
}

// parseWithRetry parses the final verdict and, when the model scored
// participants that are not in the debate, re-prompts once with the real
// names before accepting the mismatched result. Degraded display beats
// aborting the end-of-debate flow.
func (o *Orchestrator) parseWithRetry(ctx context.Context, d *db.Debate, messages []llm.Message, profile Profile, text string) (*Evaluation, string) {
	eval, err := ParseEvaluation(text)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			o.logger.Error("unparseable final evaluation",
				"debate_id", d.ID, "reason", perr.Reason, "raw_len", len(perr.Raw))
		}
		return nil, text
	}

	unknown := UnknownParticipants(eval, d.Participants)
	if len(unknown) == 0 {
		return eval, text
	}

	o.logger.Warn("evaluation names unknown participants, re-prompting",
		"debate_id", d.ID, "unknown", strings.Join(unknown, ", "))

	correction := llm.Message{
		Role: "system",
		Content: fmt.Sprintf(
			"Your previous evaluation used participant names that are not in this debate. The participants are exactly: %s. Return the full JSON evaluation again using only these names.",
			strings.Join(d.Participants, ", ")),
	}
	retryText, aiErr := o.gateway.Complete(ctx, append(append([]llm.Message{}, messages...), correction), profile)
	if aiErr != nil {
		return eval, text
	}

	retryEval, err := ParseEvaluation(retryText)
	if err != nil || len(UnknownParticipants(retryEval, d.Participants)) > 0 {
		// Keep the first result; mismatched names degrade display only.
		return eval, text
	}
	return retryEval, retryText
}

// completeOrFallback runs one gateway call and substitutes the fixed apology
// string on any failure. No retries: fallback is the observed design.
func (o *Orchestrator) completeOrFallback(ctx context.Context, messages []llm.Message, profile Profile) string {
	text, aiErr := o.gateway.Complete(ctx, messages, profile)
	if aiErr != nil {
		return FallbackReply
	}
	return text
}
