package reviews

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Required column names in a review file.
const (
	ColCompany   = "company"
	ColProvince  = "province"
	ColTopic     = "topic"
	ColProcessed = "processed_reviews"
)

// ErrMissingColumn is returned when a review file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Review is one labelled customer review.
type Review struct {
	Company          string
	Province         string
	Topic            string
	ProcessedReviews string
}

// Source yields the full review table in store order.
type Source interface {
	Reviews() ([]Review, error)
}

// FileSource reads a CSV or XLSX file on every call.
type FileSource struct {
	Path string
}

// Reviews loads the file at s.Path.
func (s FileSource) Reviews() ([]Review, error) {
	return LoadFile(s.Path)
}

// LoadFile loads reviews from a .csv or .xlsx file.
func LoadFile(path string) ([]Review, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening review file: %w", err)
		}
		defer f.Close()
		return LoadCSV(f)
	}
}

// LoadCSV parses a CSV review table with a header row.
func LoadCSV(r io.Reader) ([]Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return fromRows(rows)
}

// LoadXLSX reads the first sheet of an Excel workbook.
func LoadXLSX(path string) ([]Review, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]Review, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file has no header", ErrMissingColumn)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, col := range []string{ColCompany, ColProvince, ColTopic, ColProcessed} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	out := make([]Review, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, Review{
			Company:          cell(row, idx[ColCompany]),
			Province:         cell(row, idx[ColProvince]),
			Topic:            cell(row, idx[ColTopic]),
			ProcessedReviews: normalizeText(cell(row, idx[ColProcessed])),
		})
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// normalizeText maps missing values to the empty string.
func normalizeText(s string) string {
	switch s {
	case "nan", "NaN", "NULL", "None":
		return ""
	}
	return s
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Provinces returns the distinct provinces in first-seen order.
func Provinces(reviews []Review) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range reviews {
		if r.Province == "" {
			continue
		}
		if _, ok := seen[r.Province]; ok {
			continue
		}
		seen[r.Province] = struct{}{}
		out = append(out, r.Province)
	}
	return out
}
