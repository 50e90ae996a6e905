// Package persistence provides a SQLite journal of decisions and
// action outcomes.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"wildmind/internal/action"
	"wildmind/internal/agent"
	"wildmind/internal/brain"
)

// Journal wraps a SQLite connection. It satisfies brain.DecisionRecorder;
// write failures are logged, never propagated into the simulation.
type Journal struct {
	conn *sqlx.DB
}

var _ brain.DecisionRecorder = (*Journal)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		intent TEXT NOT NULL,
		action TEXT NOT NULL,
		args_json TEXT NOT NULL,
		raw TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		action TEXT NOT NULL,
		success INTEGER NOT NULL,
		reason TEXT NOT NULL,
		interrupted INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_agent ON decisions(agent_id);
	CREATE INDEX IF NOT EXISTS idx_outcomes_agent ON outcomes(agent_id);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// RecordDecision appends an accepted decision.
func (j *Journal) RecordDecision(a *agent.Agent, dec *brain.Decision, raw string) {
	argsJSON, _ := json.Marshal(dec.NextAction.Args)
	_, err := j.conn.Exec(
		`INSERT INTO decisions (at, agent_id, agent_name, intent, action, args_json, raw)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), a.ID.String(), a.Name,
		dec.Intent, dec.NextAction.Name, string(argsJSON), raw,
	)
	if err != nil {
		slog.Error("journal decision write failed", "agent", a.Name, "error", err)
	}
}

// RecordOutcome appends a finished action result.
func (j *Journal) RecordOutcome(a *agent.Agent, name string, res action.Result, at time.Time) {
	success, interrupted := 0, 0
	if res.Success {
		success = 1
	}
	if res.Interrupted {
		interrupted = 1
	}
	_, err := j.conn.Exec(
		`INSERT INTO outcomes (at, agent_id, agent_name, action, success, reason, interrupted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339), a.ID.String(), a.Name,
		name, success, res.Reason, interrupted,
	)
	if err != nil {
		slog.Error("journal outcome write failed", "agent", a.Name, "error", err)
	}
}

// DecisionRow is one journal entry as stored.
type DecisionRow struct {
	At        string `db:"at" json:"at"`
	AgentID   string `db:"agent_id" json:"agent_id"`
	AgentName string `db:"agent_name" json:"agent_name"`
	Intent    string `db:"intent" json:"intent"`
	Action    string `db:"action" json:"action"`
	ArgsJSON  string `db:"args_json" json:"args"`
	Raw       string `db:"raw" json:"-"`
}

// RecentDecisions returns the most recent N decisions, newest first.
func (j *Journal) RecentDecisions(limit int) ([]DecisionRow, error) {
	var rows []DecisionRow
	err := j.conn.Select(&rows,
		`SELECT at, agent_id, agent_name, intent, action, args_json, raw
		 FROM decisions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return rows, err
}

// OutcomeRow is one finished action as stored.
type OutcomeRow struct {
	At          string `db:"at" json:"at"`
	AgentID     string `db:"agent_id" json:"agent_id"`
	AgentName   string `db:"agent_name" json:"agent_name"`
	Action      string `db:"action" json:"action"`
	Success     bool   `db:"success" json:"success"`
	Reason      string `db:"reason" json:"reason,omitempty"`
	Interrupted bool   `db:"interrupted" json:"interrupted"`
}

// RecentOutcomes returns the most recent N action results, newest first.
func (j *Journal) RecentOutcomes(limit int) ([]OutcomeRow, error) {
	var rows []OutcomeRow
	err := j.conn.Select(&rows,
		`SELECT at, agent_id, agent_name, action, success, reason, interrupted
		 FROM outcomes ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return rows, err
}
