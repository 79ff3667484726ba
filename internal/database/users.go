package database

import (
	"database/sql"
	"strings"
)

// CreateUser inserts an account. Returns 0 if the email already exists.
func (db *DB) CreateUser(email, passwordHash, company string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT OR IGNORE INTO users (email, password_hash, company) VALUES (?, ?, ?)`,
		normalizeEmail(email), passwordHash, company,
	)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return result.LastInsertId()
}

// GetUserByEmail returns the account for email, or nil if none exists.
func (db *DB) GetUserByEmail(email string) (*User, error) {
	row := db.conn.QueryRow(
		`SELECT id, email, password_hash, company, created_at FROM users WHERE email = ?`,
		normalizeEmail(email),
	)
	return scanUser(row)
}

// GetUserByID returns the account with id, or nil if none exists.
func (db *DB) GetUserByID(id int64) (*User, error) {
	row := db.conn.QueryRow(
		`SELECT id, email, password_hash, company, created_at FROM users WHERE id = ?`, id,
	)
	return scanUser(row)
}

// ListUsers returns all accounts ordered by email.
func (db *DB) ListUsers() ([]User, error) {
	rows, err := db.conn.Query(
		`SELECT id, email, password_hash, company, created_at FROM users ORDER BY email`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Company, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes an account and its sessions. Reports whether an
// account was removed.
func (db *DB) DeleteUser(email string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	email = normalizeEmail(email)
	if _, err := tx.Exec(
		`DELETE FROM sessions WHERE user_id IN (SELECT id FROM users WHERE email = ?)`, email,
	); err != nil {
		return false, err
	}
	result, err := tx.Exec(`DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Company, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
