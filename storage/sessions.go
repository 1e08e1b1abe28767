package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Session is one recorded clicker run
type Session struct {
	ID           int64
	StartedAt    time.Time
	EndedAt      time.Time
	Profile      string
	ClickCount   int64
	DurationMs   int64
	StopReason   string
	Success      bool
	ErrorMessage string
}

// SaveSession saves a finished run to the database
func (db *DB) SaveSession(s *Session) error {
	query := `
		INSERT INTO sessions (
			started_at, ended_at, profile, click_count, duration_ms,
			stop_reason, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		s.StartedAt.UTC().Format(time.RFC3339), s.EndedAt.UTC().Format(time.RFC3339),
		s.Profile, s.ClickCount, s.DurationMs,
		s.StopReason, s.Success, s.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	s.ID = id
	return nil
}

// GetSessions retrieves sessions with pagination, newest first
func (db *DB) GetSessions(limit, offset int) ([]Session, error) {
	query := `
		SELECT
			id, started_at, ended_at, profile, click_count, duration_ms,
			stop_reason, success, error_message
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var errorMessage sql.NullString

		err := rows.Scan(
			&s.ID, &s.StartedAt, &s.EndedAt, &s.Profile, &s.ClickCount, &s.DurationMs,
			&s.StopReason, &s.Success, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if errorMessage.Valid {
			s.ErrorMessage = errorMessage.String
		}

		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// DeleteSession deletes a session by ID
func (db *DB) DeleteSession(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}

// GetSessionCount returns the total number of recorded sessions
func (db *DB) GetSessionCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}
