package database

import "time"

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	now := time.Now().UTC().Format(timeLayout)

	queries := []struct {
		sql  string
		args []any
		dest *int
	}{
		{"SELECT COUNT(*) FROM reviews", nil, &s.Reviews},
		{"SELECT COUNT(DISTINCT company) FROM reviews", nil, &s.Companies},
		{"SELECT COUNT(DISTINCT province) FROM reviews", nil, &s.Provinces},
		{"SELECT COUNT(DISTINCT topic) FROM reviews", nil, &s.Topics},
		{"SELECT COUNT(*) FROM users", nil, &s.Users},
		{"SELECT COUNT(*) FROM sessions WHERE expires_at > ?", []any{now}, &s.ActiveSessions},
		{"SELECT COUNT(*) FROM inferences", nil, &s.Inferences},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql, q.args...).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}
