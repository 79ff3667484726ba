package database

import (
	"database/sql"
	"time"
)

// timeLayout matches SQLite's datetime() output so stored timestamps
// compare correctly as text.
const timeLayout = "2006-01-02 15:04:05"

// CreateSession stores a session token for userID.
func (db *DB) CreateSession(token string, userID int64, expiresAt time.Time) error {
	_, err := db.conn.Exec(
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt.UTC().Format(timeLayout),
	)
	return err
}

// GetSession returns the session for token if it has not expired at now.
// Returns nil when the token is unknown or expired.
func (db *DB) GetSession(token string, now time.Time) (*Session, error) {
	row := db.conn.QueryRow(
		`SELECT token, user_id, expires_at, created_at FROM sessions
		WHERE token = ? AND expires_at > ?`,
		token, now.UTC().Format(timeLayout),
	)
	var s Session
	var expires string
	if err := row.Scan(&s.Token, &s.UserID, &expires, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t, err := time.ParseInLocation(timeLayout, expires, time.UTC)
	if err != nil {
		return nil, err
	}
	s.ExpiresAt = t
	return &s, nil
}

// DeleteSession removes a session (logout).
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// PurgeExpiredSessions deletes sessions that expired at or before now.
func (db *DB) PurgeExpiredSessions(now time.Time) (int64, error) {
	result, err := db.conn.Exec(
		`DELETE FROM sessions WHERE expires_at <= ?`, now.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
