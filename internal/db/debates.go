package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

// Debate is one debate session with its participants and ordered arguments.
// JSON field names match the frontend wire format.
type Debate struct {
	ID           string     `json:"id"`
	Topic        string     `json:"topic"`
	Mode         string     `json:"mode"`
	Difficulty   string     `json:"difficulty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	Participants []string   `json:"participants"`
	Arguments    []Argument `json:"arguments"`
}

// Argument is one utterance in a debate, ordered by seq within its debate.
// The role column discriminates human entries from the synthetic AI speakers;
// participant carries the display identity shown to clients.
type Argument struct {
	ID          string    `json:"id"`
	DebateID    string    `json:"-"`
	Seq         int       `json:"-"`
	Role        string    `json:"-"`
	Participant string    `json:"participant"`
	Body        string    `json:"argument"`
	CreatedAt   time.Time `json:"timestamp"`
}

type CreateDebateInput struct {
	Topic        string
	Mode         string
	Difficulty   string
	Participants []string
}

func (db *DB) CreateDebate(input CreateDebateInput) (*Debate, error) {
	id := NewID()
	now := time.Now().UTC()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO debates (id, topic, mode, difficulty, status, created_at)
		VALUES (?, ?, ?, ?, 'active', ?)`,
		id, input.Topic, input.Mode, input.Difficulty, now)
	if err != nil {
		return nil, fmt.Errorf("creating debate: %w", err)
	}

	for i, name := range input.Participants {
		_, err = tx.Exec(`
			INSERT INTO participants (debate_id, position, name)
			VALUES (?, ?, ?)`, id, i, name)
		if err != nil {
			return nil, fmt.Errorf("adding participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing: %w", err)
	}

	return &Debate{
		ID:           id,
		Topic:        input.Topic,
		Mode:         input.Mode,
		Difficulty:   input.Difficulty,
		Status:       "active",
		CreatedAt:    now,
		Participants: append([]string(nil), input.Participants...),
		Arguments:    []Argument{},
	}, nil
}

func (db *DB) GetDebate(id string) (*Debate, error) {
	d := &Debate{ID: id}
	err := db.QueryRow(`
		SELECT topic, mode, difficulty, status, created_at
		FROM debates WHERE id = ?`, id).Scan(
		&d.Topic, &d.Mode, &d.Difficulty, &d.Status, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting debate: %w", err)
	}

	if d.Participants, err = db.getParticipants(id); err != nil {
		return nil, err
	}
	if d.Arguments, err = db.getArguments(id); err != nil {
		return nil, err
	}
	return d, nil
}

func (db *DB) ListDebates() ([]*Debate, error) {
	rows, err := db.Query(`SELECT id FROM debates ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing debates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	debates := make([]*Debate, 0, len(ids))
	for _, id := range ids {
		d, err := db.GetDebate(id)
		if err != nil {
			return nil, err
		}
		debates = append(debates, d)
	}
	return debates, nil
}

func (db *DB) getParticipants(debateID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM participants WHERE debate_id = ? ORDER BY position`, debateID)
	if err != nil {
		return nil, fmt.Errorf("getting participants: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (db *DB) getArguments(debateID string) ([]Argument, error) {
	rows, err := db.Query(`
		SELECT id, seq, role, participant, body, created_at
		FROM arguments WHERE debate_id = ? ORDER BY seq`, debateID)
	if err != nil {
		return nil, fmt.Errorf("getting arguments: %w", err)
	}
	defer rows.Close()

	args := []Argument{}
	for rows.Next() {
		a := Argument{DebateID: debateID}
		if err := rows.Scan(&a.ID, &a.Seq, &a.Role, &a.Participant, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, rows.Err()
}

// AddParticipant appends a participant at the next free position.
func (db *DB) AddParticipant(debateID, name string) error {
	_, err := db.Exec(`
		INSERT INTO participants (debate_id, position, name)
		SELECT ?, COALESCE(MAX(position), -1) + 1, ?
		FROM participants WHERE debate_id = ?`,
		debateID, name, debateID)
	if err != nil {
		return fmt.Errorf("adding participant: %w", err)
	}
	return nil
}

// AppendArgument inserts an argument at the next sequence number and returns
// the stored entry. Callers must hold the debate's store lock so the
// seq read and insert cannot interleave with another submission.
func (db *DB) AppendArgument(debateID, role, participant, body string) (*Argument, error) {
	a := &Argument{
		ID:          NewID(),
		DebateID:    debateID,
		Role:        role,
		Participant: participant,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		SELECT COALESCE(MAX(seq), -1) + 1 FROM arguments WHERE debate_id = ?`,
		debateID).Scan(&a.Seq)
	if err != nil {
		return nil, fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO arguments (id, debate_id, seq, role, participant, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.DebateID, a.Seq, a.Role, a.Participant, a.Body, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("appending argument: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing: %w", err)
	}
	return a, nil
}

// CountArguments returns the number of argument entries in a debate.
func (db *DB) CountArguments(debateID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM arguments WHERE debate_id = ?`, debateID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting arguments: %w", err)
	}
	return n, nil
}

// MarkEnded transitions a debate from active to ended. Returns ErrNotFound if
// the debate does not exist; reports whether the row was still active.
func (db *DB) MarkEnded(debateID string) (bool, error) {
	res, err := db.Exec(`
		UPDATE debates SET status = 'ended' WHERE id = ? AND status = 'active'`, debateID)
	if err != nil {
		return false, fmt.Errorf("ending debate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveEvaluation stores the final structured evaluation for an ended debate.
func (db *DB) SaveEvaluation(debateID, payload string) error {
	_, err := db.Exec(`
		INSERT INTO evaluations (debate_id, payload) VALUES (?, ?)
		ON CONFLICT(debate_id) DO NOTHING`, debateID, payload)
	if err != nil {
		return fmt.Errorf("saving evaluation: %w", err)
	}
	return nil
}

// GetEvaluation returns the stored evaluation payload, or ErrNotFound.
func (db *DB) GetEvaluation(debateID string) (string, error) {
	var payload string
	err := db.QueryRow(`SELECT payload FROM evaluations WHERE debate_id = ?`, debateID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting evaluation: %w", err)
	}
	return payload, nil
}
