package debate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hazyhaar/debatearena/internal/db"
)

// Debate modes and statuses (wire values).
const (
	ModeHumanVsHuman = "human-vs-human"
	ModeHumanVsAI    = "human-vs-ai"

	StatusActive = "active"
	StatusEnded  = "ended"
)

const maxParticipants = 2

var (
	ErrDebateNotFound      = errors.New("debate not found")
	ErrDebateEnded         = errors.New("debate has ended")
	ErrParticipantNotFound = errors.New("participant not in debate")
	ErrDebateFull          = errors.New("debate is full")
	ErrWrongMode           = errors.New("cannot join this debate type")
)

// ValidMode reports whether mode is one of the two debate modes.
func ValidMode(mode string) bool {
	return mode == ModeHumanVsHuman || mode == ModeHumanVsAI
}

// Store owns debate entities and enforces the identity and participation
// invariants. All mutating operations on one debate are serialized through a
// per-debate mutex so interleaved submissions cannot corrupt the turn-taking
// count.
type Store struct {
	db *db.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database, locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the debate's exclusive mutex and returns the unlock func.
func (s *Store) Lock(debateID string) func() {
	s.mu.Lock()
	l, ok := s.locks[debateID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[debateID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Create starts a new debate. In human-vs-ai mode the AI opponent joins
// immediately, so participants are complete at creation.
func (s *Store) Create(topic, mode, participantName, difficulty string) (*db.Debate, error) {
	if !ValidMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	participants := []string{participantName}
	if mode == ModeHumanVsAI {
		participants = append(participants, AIAssistantName)
	}

	return s.db.CreateDebate(db.CreateDebateInput{
		Topic:        topic,
		Mode:         mode,
		Difficulty:   ResolveProfile(difficulty).Tier,
		Participants: participants,
	})
}

// Get returns a debate snapshot, or ErrDebateNotFound.
func (s *Store) Get(debateID string) (*db.Debate, error) {
	d, err := s.db.GetDebate(debateID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrDebateNotFound
	}
	return d, err
}

// List returns all debates in creation order.
func (s *Store) List() ([]*db.Debate, error) {
	return s.db.ListDebates()
}

// Join adds a second human participant to a human-vs-human debate.
func (s *Store) Join(debateID, participantName string) (*db.Debate, error) {
	unlock := s.Lock(debateID)
	defer unlock()

	d, err := s.Get(debateID)
	if err != nil {
		return nil, err
	}
	if d.Mode != ModeHumanVsHuman {
		return nil, ErrWrongMode
	}
	if len(d.Participants) >= maxParticipants {
		return nil, ErrDebateFull
	}

	if err := s.db.AddParticipant(debateID, participantName); err != nil {
		return nil, err
	}
	d.Participants = append(d.Participants, participantName)
	return d, nil
}

// HasParticipant reports whether name is in the debate's participant list.
func HasParticipant(d *db.Debate, name string) bool {
	for _, p := range d.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// Append adds an entry from the given speaker to the debate's argument
// sequence. Callers must hold the debate's lock.
func (s *Store) Append(debateID string, speaker Speaker, body string) (*db.Argument, error) {
	return s.db.AppendArgument(debateID, string(speaker.Role), speaker.Display(), body)
}

// MarkEnded performs the one-way active->ended transition. Returns
// ErrDebateEnded when the debate was already ended: re-ending is an explicit
// rejection, never a silent repeat.
func (s *Store) MarkEnded(debateID string) error {
	// Distinguish "missing" from "already ended" before the guarded update.
	if _, err := s.Get(debateID); err != nil {
		return err
	}
	ok, err := s.db.MarkEnded(debateID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDebateEnded
	}
	return nil
}

// SaveEvaluation persists the final evaluation payload for an ended debate.
func (s *Store) SaveEvaluation(debateID, payload string) error {
	return s.db.SaveEvaluation(debateID, payload)
}
