package database

import (
	"crypto/rand"
	"encoding/json"
	"sync"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newID returns a time-ordered identifier for an inference record.
func newID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// RecordInference stores rec and returns its generated ID.
func (db *DB) RecordInference(rec InferenceRecord) (string, error) {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return "", err
	}
	id := newID()
	_, err = db.conn.Exec(
		`INSERT INTO inferences (id, company, input_text, processed_text, top_label, probabilities)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, rec.Company, rec.InputText, rec.ProcessedText, rec.TopLabel, string(scores),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecentInferences returns up to limit records for company, newest first.
func (db *DB) RecentInferences(company string, limit int) ([]InferenceRecord, error) {
	rows, err := db.conn.Query(
		`SELECT id, company, input_text, processed_text, top_label, probabilities, created_at
		FROM inferences WHERE company = ? ORDER BY id DESC LIMIT ?`,
		company, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []InferenceRecord
	for rows.Next() {
		var r InferenceRecord
		var scores string
		if err := rows.Scan(&r.ID, &r.Company, &r.InputText, &r.ProcessedText,
			&r.TopLabel, &scores, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
