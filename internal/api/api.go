// Package api exposes the debate platform over HTTP/JSON.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/debatearena/internal/debate"
)

// maxBodySize is the maximum HTTP body size for argument submission.
const maxBodySize = 64 * 1024 // 64KB

// ArgumentRateLimiter limits argument submissions per IP (30 req/60s).
var ArgumentRateLimiter = NewRateLimiter(30, 60*time.Second)

type API struct {
	orch              *debate.Orchestrator
	store             *debate.Store
	defaultDifficulty string
	logger            *slog.Logger
}

func New(orch *debate.Orchestrator, defaultDifficulty string, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		orch:              orch,
		store:             orch.Store(),
		defaultDifficulty: defaultDifficulty,
		logger:            logger,
	}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/debates", a.handleCreateDebate)
	mux.HandleFunc("GET /api/debates", a.handleListDebates)
	mux.HandleFunc("GET /api/debates/{id}", a.handleGetDebate)
	mux.HandleFunc("POST /api/debates/{id}/join", a.handleJoinDebate)
	mux.HandleFunc("POST /api/debates/{id}/arguments",
		RateLimitMiddleware(ArgumentRateLimiter, a.handleSubmitArgument))
	mux.HandleFunc("POST /api/debates/{id}/end", a.handleEndDebate)
	mux.HandleFunc("POST /api/debates/{id}/validate", a.handleValidateArgument)
	mux.HandleFunc("GET /api/difficulties", a.handleGetDifficulties)
}

// --- Debates ---

func (a *API) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic           string `json:"topic"`
		Mode            string `json:"mode"`
		ParticipantName string `json:"participantName"`
		Difficulty      string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Topic == "" || req.Mode == "" || req.ParticipantName == "" {
		jsonError(w, "Missing required fields: topic, mode, participantName", http.StatusBadRequest)
		return
	}
	if !debate.ValidMode(req.Mode) {
		jsonError(w, "mode must be human-vs-human or human-vs-ai", http.StatusBadRequest)
		return
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = a.defaultDifficulty
	}

	d, err := a.store.Create(req.Topic, req.Mode, req.ParticipantName, difficulty)
	if err != nil {
		a.logger.Error("creating debate", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, http.StatusCreated, d)
}

func (a *API) handleListDebates(w http.ResponseWriter, r *http.Request) {
	debates, err := a.store.List()
	if err != nil {
		a.logger.Error("listing debates", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResp(w, http.StatusOK, debates)
}

func (a *API) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	d, err := a.store.Get(r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, d)
}

func (a *API) handleJoinDebate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantName string `json:"participantName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ParticipantName == "" {
		jsonError(w, "participantName is required", http.StatusBadRequest)
		return
	}

	d, err := a.store.Join(r.PathValue("id"), req.ParticipantName)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, d)
}

// --- Arguments ---

func (a *API) handleSubmitArgument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req struct {
		Participant string `json:"participant"`
		Argument    string `json:"argument"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Participant == "" || req.Argument == "" {
		jsonError(w, "participant and argument are required", http.StatusBadRequest)
		return
	}

	result, err := a.orch.SubmitArgument(r.Context(), r.PathValue("id"), req.Participant, req.Argument)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}

	jsonResp(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*debate.SubmitResult
	}{true, result})
}

func (a *API) handleEndDebate(w http.ResponseWriter, r *http.Request) {
	result, err := a.orch.EndDebate(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, err)
		return
	}

	jsonResp(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*debate.EndResult
	}{true, result})
}

// --- Advisory validation & difficulty listing ---

func (a *API) handleValidateArgument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Argument string `json:"argument"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	d, err := a.store.Get(r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	jsonResp(w, http.StatusOK, debate.ValidateLength(req.Argument, d.Difficulty))
}

func (a *API) handleGetDifficulties(w http.ResponseWriter, r *http.Request) {
	tiers := make([]debate.Profile, 0, 3)
	for _, t := range debate.Tiers() {
		tiers = append(tiers, debate.ResolveProfile(t))
	}
	jsonResp(w, http.StatusOK, map[string]interface{}{
		"difficulties": tiers,
		"default":      a.defaultDifficulty,
	})
}

// --- Helpers ---

// writeDomainError maps store/orchestrator errors onto HTTP statuses.
func (a *API) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, debate.ErrDebateNotFound):
		jsonError(w, "Debate not found", http.StatusNotFound)
	case errors.Is(err, debate.ErrParticipantNotFound):
		jsonError(w, "Participant not in debate", http.StatusBadRequest)
	case errors.Is(err, debate.ErrDebateEnded):
		jsonError(w, "Debate has ended", http.StatusBadRequest)
	case errors.Is(err, debate.ErrWrongMode):
		jsonError(w, "Cannot join this debate type", http.StatusBadRequest)
	case errors.Is(err, debate.ErrDebateFull):
		jsonError(w, "Debate is full", http.StatusBadRequest)
	default:
		a.logger.Error("request failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonResp(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
