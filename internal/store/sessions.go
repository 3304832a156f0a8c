package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Session groups the memories captured during one working session.
type Session struct {
	ID          int64
	SessionID   string
	Project     string
	StartedAt   int64
	EndedAt     *int64
	Status      string
	MemoryCount int
}

// InitSession creates or resumes a session. If the session_id already exists
// and is active, it returns the existing session.
func (db *DB) InitSession(sessionID, project string) (*Session, error) {
	now := time.Now().UnixMilli()

	var s Session
	err := db.QueryRow(`
		SELECT id, session_id, project, started_at, ended_at, status, memory_count
		FROM sessions WHERE session_id = ? AND status = 'active'
	`, sessionID).Scan(&s.ID, &s.SessionID, &s.Project, &s.StartedAt, &s.EndedAt, &s.Status, &s.MemoryCount)
	if err == nil {
		return &s, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check existing session: %w", err)
	}

	result, err := db.Exec(`
		INSERT INTO sessions (session_id, project, started_at, status)
		VALUES (?, ?, ?, 'active')
	`, sessionID, project, now)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	id, _ := result.LastInsertId()
	return &Session{
		ID:        id,
		SessionID: sessionID,
		Project:   project,
		StartedAt: now,
		Status:    "active",
	}, nil
}

// GetSession returns a session by its session_id, or nil if not found.
func (db *DB) GetSession(sessionID string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, session_id, project, started_at, ended_at, status, memory_count
		FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&s.ID, &s.SessionID, &s.Project, &s.StartedAt, &s.EndedAt, &s.Status, &s.MemoryCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// EndSession finalizes a session. Already-ended sessions are left alone.
func (db *DB) EndSession(sessionID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE sessions SET status = 'completed', ended_at = COALESCE(ended_at, ?)
		WHERE session_id = ? AND status = 'active'
	`, now, sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// GetRecentSessions returns the most recent sessions, ordered by started_at DESC.
func (db *DB) GetRecentSessions(limit int) ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, session_id, project, started_at, ended_at, status, memory_count
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Project, &s.StartedAt, &s.EndedAt, &s.Status, &s.MemoryCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// IncrementMemoryCount bumps the memory counter for an active session.
func (db *DB) IncrementMemoryCount(sessionID string) error {
	_, err := db.Exec(`
		UPDATE sessions SET memory_count = memory_count + 1
		WHERE session_id = ? AND status = 'active'
	`, sessionID)
	if err != nil {
		return fmt.Errorf("increment memory count: %w", err)
	}
	return nil
}
