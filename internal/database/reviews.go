package database

import (
	"fmt"

	"github.com/TobiSchelling/expedanalysis/internal/reviews"
)

// ReplaceReviews swaps the whole review store for rs, keeping their order.
func (db *DB) ReplaceReviews(rs []reviews.Review) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reviews`); err != nil {
		return 0, fmt.Errorf("clearing reviews: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO reviews (company, province, topic, processed_reviews) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range rs {
		if _, err := stmt.Exec(r.Company, r.Province, r.Topic, r.ProcessedReviews); err != nil {
			return 0, fmt.Errorf("inserting review %d: %w", i+1, err)
		}
	}

	return len(rs), tx.Commit()
}

// Reviews returns the whole store in import order. It makes *DB a
// reviews.Source. Adopted tables may lack the id column or hold NULL
// text, so rows are ordered by rowid and NULLs read as empty strings.
func (db *DB) Reviews() ([]reviews.Review, error) {
	rows, err := db.conn.Query(`
		SELECT COALESCE(company, ''), COALESCE(province, ''),
		       COALESCE(topic, ''), COALESCE(processed_reviews, '')
		FROM reviews ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []reviews.Review{}
	for rows.Next() {
		var r reviews.Review
		if err := rows.Scan(&r.Company, &r.Province, &r.Topic, &r.ProcessedReviews); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Companies returns the distinct tenants present in the store.
func (db *DB) Companies() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT company FROM reviews WHERE company IS NOT NULL ORDER BY company`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
