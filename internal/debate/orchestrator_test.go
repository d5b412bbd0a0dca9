package debate

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/debatearena/internal/db"
	"github.com/hazyhaar/debatearena/internal/llm"
)

// scriptedProvider returns canned replies (or errors) in order, recording
// every request it saw.
type scriptedProvider struct {
	replies []string
	errs    []error
	calls   int
	reqs    []llm.Request
}

func (p *scriptedProvider) Name() string     { return "scripted" }
func (p *scriptedProvider) Models() []string { return []string{"test-model"} }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	i := p.calls
	p.calls++
	p.reqs = append(p.reqs, req)
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	reply := "fallback scripted reply"
	if i < len(p.replies) {
		reply = p.replies[i]
	}
	return &llm.Response{Provider: "scripted", Model: req.Model, Content: reply}, nil
}

func newTestOrchestrator(t *testing.T, p *scriptedProvider) *Orchestrator {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	logger := slog.New(slog.DiscardHandler)
	client := llm.New([]llm.Provider{p})
	gateway := NewGateway(client, "", "test-model", time.Second, logger)
	return NewOrchestrator(NewStore(database), NewKeywordRetriever(), gateway, logger)
}

func TestCreateHumanVsAIAddsOpponent(t *testing.T) {
	orch := newTestOrchestrator(t, &scriptedProvider{})

	d, err := orch.Store().Create("Should we tax robots?", ModeHumanVsAI, "Alice", "easy")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(d.Participants) != 2 || d.Participants[0] != "Alice" || d.Participants[1] != AIAssistantName {
		t.Errorf("participants = %v, want [Alice %s]", d.Participants, AIAssistantName)
	}
	if d.Status != StatusActive {
		t.Errorf("status = %q, want active", d.Status)
	}
	if d.Difficulty != "easy" {
		t.Errorf("difficulty = %q, want easy", d.Difficulty)
	}
}

func TestSubmitArgumentHumanVsAI(t *testing.T) {
	p := &scriptedProvider{replies: []string{"A spirited counterpoint."}}
	orch := newTestOrchestrator(t, p)

	d, err := orch.Store().Create("climate change", ModeHumanVsAI, "Alice", "intermediate")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := orch.SubmitArgument(context.Background(), d.ID, "Alice", "We must cut carbon emissions now.")
	if err != nil {
		t.Fatalf("SubmitArgument: %v", err)
	}
	if result.Argument == nil || result.Argument.Participant != "Alice" {
		t.Fatalf("result.Argument = %+v", result.Argument)
	}
	if result.AIResponse == nil || *result.AIResponse != "A spirited counterpoint." {
		t.Fatalf("AIResponse = %v, want scripted reply", result.AIResponse)
	}
	if result.Evaluation != nil {
		t.Error("no pairwise evaluation expected in human-vs-ai mode")
	}

	// Exactly two entries: the human argument and the AI reply.
	got, err := orch.Store().Get(d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Arguments) != 2 {
		t.Fatalf("arguments = %d, want 2", len(got.Arguments))
	}
	if got.Arguments[1].Participant != AIAssistantName {
		t.Errorf("second entry speaker = %q, want %s", got.Arguments[1].Participant, AIAssistantName)
	}
	if got.Arguments[1].Role != string(RoleAIReply) {
		t.Errorf("second entry role = %q, want %s", got.Arguments[1].Role, RoleAIReply)
	}

	// The retrieved context rides in the system prompt.
	if len(p.reqs) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(p.reqs))
	}
	sys := p.reqs[0].Messages[0].Content
	if !strings.Contains(sys, "Related concepts:") {
		t.Errorf("system prompt missing retrieved context: %q", sys)
	}
}

func TestSubmitArgumentGatewayFailureFallsBack(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("connection refused")}}
	orch := newTestOrchestrator(t, p)

	d, _ := orch.Store().Create("anything", ModeHumanVsAI, "Alice", "intermediate")

	result, err := orch.SubmitArgument(context.Background(), d.ID, "Alice", "my opening statement")
	if err != nil {
		t.Fatalf("SubmitArgument: %v", err)
	}
	if result.AIResponse == nil || *result.AIResponse != FallbackReply {
		t.Fatalf("AIResponse = %v, want the fallback reply", result.AIResponse)
	}

	// The fallback is persisted like a regular AI turn.
	got, _ := orch.Store().Get(d.ID)
	if len(got.Arguments) != 2 || got.Arguments[1].Body != FallbackReply {
		t.Errorf("persisted entries = %+v", got.Arguments)
	}
}

func TestPairwiseEvaluationTrigger(t *testing.T) {
	p := &scriptedProvider{replies: []string{"Bob made the stronger case.", "Alice pulled ahead."}}
	orch := newTestOrchestrator(t, p)

	d, err := orch.Store().Create("free trade", ModeHumanVsHuman, "Alice", "intermediate")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := orch.Store().Join(d.ID, "Bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	ctx := context.Background()

	// 1st human argument: no evaluation yet.
	r1, err := orch.SubmitArgument(ctx, d.ID, "Alice", "Free trade raises living standards.")
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if r1.Evaluation != nil {
		t.Fatal("no evaluation expected after an odd number of human turns")
	}

	// 2nd human argument completes a pair: judge fires.
	r2, err := orch.SubmitArgument(ctx, d.ID, "Bob", "It also hollows out local industry.")
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if r2.Evaluation == nil || *r2.Evaluation != "Bob made the stronger case." {
		t.Fatalf("evaluation = %v, want the first verdict", r2.Evaluation)
	}

	// 3rd human argument: the judge entry in between must not shift parity.
	r3, err := orch.SubmitArgument(ctx, d.ID, "Alice", "Displacement is real but transitional.")
	if err != nil {
		t.Fatalf("submit 3: %v", err)
	}
	if r3.Evaluation != nil {
		t.Fatal("no evaluation expected on the 3rd human turn")
	}

	// 4th completes the second pair.
	r4, err := orch.SubmitArgument(ctx, d.ID, "Bob", "Transitions can last a generation.")
	if err != nil {
		t.Fatalf("submit 4: %v", err)
	}
	if r4.Evaluation == nil || *r4.Evaluation != "Alice pulled ahead." {
		t.Fatalf("evaluation = %v, want the second verdict", r4.Evaluation)
	}

	got, _ := orch.Store().Get(d.ID)
	if len(got.Arguments) != 6 {
		t.Fatalf("arguments = %d, want 4 human + 2 judge", len(got.Arguments))
	}
	if got.Arguments[2].Participant != AIJudgeName || got.Arguments[5].Participant != AIJudgeName {
		t.Errorf("judge entries misplaced: %+v", got.Arguments)
	}
}

func TestSubmitArgumentRejections(t *testing.T) {
	orch := newTestOrchestrator(t, &scriptedProvider{})
	ctx := context.Background()

	if _, err := orch.SubmitArgument(ctx, "no-such-id", "Alice", "x"); !errors.Is(err, ErrDebateNotFound) {
		t.Errorf("missing debate: err = %v, want ErrDebateNotFound", err)
	}

	d, _ := orch.Store().Create("topic", ModeHumanVsHuman, "Alice", "intermediate")
	if _, err := orch.SubmitArgument(ctx, d.ID, "Mallory", "x"); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("unknown participant: err = %v, want ErrParticipantNotFound", err)
	}

	if _, err := orch.EndDebate(ctx, d.ID); err != nil {
		t.Fatalf("EndDebate: %v", err)
	}
	if _, err := orch.SubmitArgument(ctx, d.ID, "Alice", "x"); !errors.Is(err, ErrDebateEnded) {
		t.Errorf("ended debate: err = %v, want ErrDebateEnded", err)
	}
}

func TestJoinRules(t *testing.T) {
	orch := newTestOrchestrator(t, &scriptedProvider{})

	hvh, _ := orch.Store().Create("topic", ModeHumanVsHuman, "Alice", "intermediate")
	if _, err := orch.Store().Join(hvh.ID, "Bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := orch.Store().Join(hvh.ID, "Carol"); !errors.Is(err, ErrDebateFull) {
		t.Errorf("third join: err = %v, want ErrDebateFull", err)
	}

	hvai, _ := orch.Store().Create("topic", ModeHumanVsAI, "Alice", "intermediate")
	if _, err := orch.Store().Join(hvai.ID, "Bob"); !errors.Is(err, ErrWrongMode) {
		t.Errorf("join human-vs-ai: err = %v, want ErrWrongMode", err)
	}
}

func TestEndDebateWithStructuredEvaluation(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"A fine rebuttal.",
		wellFormedReply("Alice", AIAssistantName),
	}}
	orch := newTestOrchestrator(t, p)
	ctx := context.Background()

	d, _ := orch.Store().Create("topic", ModeHumanVsAI, "Alice", "hard")
	if _, err := orch.SubmitArgument(ctx, d.ID, "Alice", "my argument"); err != nil {
		t.Fatalf("SubmitArgument: %v", err)
	}

	result, err := orch.EndDebate(ctx, d.ID)
	if err != nil {
		t.Fatalf("EndDebate: %v", err)
	}
	if result.FinalEvaluation == nil {
		t.Fatal("FinalEvaluation missing")
	}
	if result.Detailed == nil {
		t.Fatal("Detailed missing for a well-formed verdict")
	}
	if result.Detailed.Overall.Winner != "Alice" {
		t.Errorf("winner = %q, want Alice", result.Detailed.Overall.Winner)
	}

	got, _ := orch.Store().Get(d.ID)
	if got.Status != StatusEnded {
		t.Errorf("status = %q, want ended", got.Status)
	}
	last := got.Arguments[len(got.Arguments)-1]
	if last.Role != string(RoleAIFinal) || last.Participant != AIFinalEvaluatorName {
		t.Errorf("final entry = %+v", last)
	}
}

func TestEndDebateUnparseableEvaluation(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"A fine rebuttal.",
		"Alice clearly won, great debate everyone!",
	}}
	orch := newTestOrchestrator(t, p)
	ctx := context.Background()

	d, _ := orch.Store().Create("topic", ModeHumanVsAI, "Alice", "intermediate")
	if _, err := orch.SubmitArgument(ctx, d.ID, "Alice", "my argument"); err != nil {
		t.Fatalf("SubmitArgument: %v", err)
	}

	result, err := orch.EndDebate(ctx, d.ID)
	if err != nil {
		t.Fatalf("EndDebate: %v", err)
	}
	if result.FinalEvaluation == nil || *result.FinalEvaluation != "Alice clearly won, great debate everyone!" {
		t.Fatalf("FinalEvaluation = %v, want the raw verdict text", result.FinalEvaluation)
	}
	if result.Detailed != nil {
		t.Error("Detailed must be omitted when the verdict cannot be parsed")
	}

	// The debate ended regardless.
	got, _ := orch.Store().Get(d.ID)
	if got.Status != StatusEnded {
		t.Errorf("status = %q, want ended", got.Status)
	}
}

func TestEndDebateRepromptSwapsUnknownNames(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		wellFormedReply("Participant 1", "Participant 2"),
		wellFormedReply("Alice", "Bob"),
	}}
	orch := newTestOrchestrator(t, p)
	ctx := context.Background()

	d, _ := orch.Store().Create("topic", ModeHumanVsHuman, "Alice", "intermediate")
	orch.Store().Join(d.ID, "Bob")
	if _, err := orch.Store().Append(d.ID, Human("Alice"), "an argument"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	result, err := orch.EndDebate(ctx, d.ID)
	if err != nil {
		t.Fatalf("EndDebate: %v", err)
	}
	if result.Detailed == nil {
		t.Fatal("Detailed missing")
	}
	if result.Detailed.Participants[0].Name != "Alice" {
		t.Errorf("name = %q, want the re-prompted Alice", result.Detailed.Participants[0].Name)
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (original + one re-prompt)", p.calls)
	}
	// The corrective message lists the real participants.
	retry := p.reqs[1].Messages
	if !strings.Contains(retry[len(retry)-1].Content, "Alice, Bob") {
		t.Errorf("corrective message = %q", retry[len(retry)-1].Content)
	}
}

func TestEndDebateRepromptKeepsFirstOnSecondMismatch(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		wellFormedReply("Participant 1", "Participant 2"),
		wellFormedReply("Speaker A", "Speaker B"),
	}}
	orch := newTestOrchestrator(t, p)
	ctx := context.Background()

	d, _ := orch.Store().Create("topic", ModeHumanVsHuman, "Alice", "intermediate")
	orch.Store().Join(d.ID, "Bob")
	orch.Store().Append(d.ID, Human("Alice"), "an argument")

	result, err := orch.EndDebate(ctx, d.ID)
	if err != nil {
		t.Fatalf("EndDebate: %v", err)
	}
	if result.Detailed == nil {
		t.Fatal("Detailed missing: a mismatched result still beats none")
	}
	if result.Detailed.Participants[0].Name != "Participant 1" {
		t.Errorf("name = %q, want the first result kept", result.Detailed.Participants[0].Name)
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want exactly one re-prompt", p.calls)
	}
}

func TestEndDebateEmpty(t *testing.T) {
	p := &scriptedProvider{}
	orch := newTestOrchestrator(t, p)

	d, _ := orch.Store().Create("topic", ModeHumanVsHuman, "Alice", "intermediate")
	result, err := orch.EndDebate(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("EndDebate: %v", err)
	}
	if result.FinalEvaluation != nil || result.Detailed != nil {
		t.Error("no evaluation expected for a debate with no arguments")
	}
	if p.calls != 0 {
		t.Errorf("provider calls = %d, want 0", p.calls)
	}
}

func TestEndDebateTwice(t *testing.T) {
	orch := newTestOrchestrator(t, &scriptedProvider{})
	ctx := context.Background()

	d, _ := orch.Store().Create("topic", ModeHumanVsHuman, "Alice", "intermediate")
	if _, err := orch.EndDebate(ctx, d.ID); err != nil {
		t.Fatalf("first end: %v", err)
	}
	if _, err := orch.EndDebate(ctx, d.ID); !errors.Is(err, ErrDebateEnded) {
		t.Errorf("second end: err = %v, want ErrDebateEnded", err)
	}
	if _, err := orch.EndDebate(ctx, "no-such-id"); !errors.Is(err, ErrDebateNotFound) {
		t.Errorf("missing debate: err = %v, want ErrDebateNotFound", err)
	}
}

func TestGatewayUsesProfileParameters(t *testing.T) {
	p := &scriptedProvider{replies: []string{"reply"}}
	orch := newTestOrchestrator(t, p)
	ctx := context.Background()

	d, _ := orch.Store().Create("topic", ModeHumanVsAI, "Alice", "hard")
	if _, err := orch.SubmitArgument(ctx, d.ID, "Alice", "argument"); err != nil {
		t.Fatalf("SubmitArgument: %v", err)
	}

	req := p.reqs[0]
	hard := ResolveProfile("hard")
	if req.Temperature != hard.Temperature || req.TopP != hard.TopP || req.MaxTokens != hard.MaxTokens {
		t.Errorf("request params = (%f, %f, %d), want hard profile (%f, %f, %d)",
			req.Temperature, req.TopP, req.MaxTokens,
			hard.Temperature, hard.TopP, hard.MaxTokens)
	}
}
