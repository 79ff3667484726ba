// Package export writes an analysis report as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/TobiSchelling/expedanalysis/internal/analytics"
	"github.com/TobiSchelling/expedanalysis/internal/pipeline"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Summary"
	SheetTopics   = "Topics"
	SheetBigrams  = "Bigrams"
	SheetTrigrams = "Trigrams"
	SheetInsights = "Insights"
)

var headers = map[analytics.Language]map[string][]any{
	analytics.Indonesian: {
		SheetSummary:  {"Perusahaan", "Provinsi", "Jumlah Ulasan"},
		SheetTopics:   {"Topik", "Jumlah", "Persentase"},
		SheetBigrams:  {"Bigram", "Jumlah"},
		SheetTrigrams: {"Trigram", "Jumlah"},
		SheetInsights: {"Peringkat", "Kategori", "Persentase", "Wawasan"},
	},
	analytics.English: {
		SheetSummary:  {"Company", "Province", "Reviews"},
		SheetTopics:   {"Topic", "Count", "Percent"},
		SheetBigrams:  {"Bigram", "Count"},
		SheetTrigrams: {"Trigram", "Count"},
		SheetInsights: {"Rank", "Category", "Percent", "Insight"},
	},
}

// WriteReport writes r as an xlsx workbook to w.
func WriteReport(w io.Writer, r *pipeline.Report, lang analytics.Language) error {
	if _, ok := headers[lang]; !ok {
		lang = analytics.Indonesian
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetTopics, SheetBigrams, SheetTrigrams, SheetInsights} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	province := r.Criteria.Province
	if r.Criteria.AnyProvince() {
		province = analytics.AllProvinces
	}

	sheets := map[string][][]any{
		SheetSummary:  {{r.Criteria.Company, province, r.Count}},
		SheetTopics:   topicRows(r.Distribution),
		SheetBigrams:  ngramRows(r.Bigrams),
		SheetTrigrams: ngramRows(r.Trigrams),
		SheetInsights: insightRows(r.Insights, lang),
	}

	for name, rows := range sheets {
		if err := writeSheet(f, name, headers[lang][name], rows, bold); err != nil {
			return fmt.Errorf("writing sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 40)
}

func topicRows(d analytics.Distribution) [][]any {
	rows := make([][]any, 0, len(d))
	for _, tc := range d {
		rows = append(rows, []any{tc.Topic, tc.Count, roundTenth(d.Percent(tc.Topic))})
	}
	return rows
}

func ngramRows(ngrams []analytics.NgramCount) [][]any {
	rows := make([][]any, 0, len(ngrams))
	for _, ng := range ngrams {
		rows = append(rows, []any{ng.String(), ng.Count})
	}
	return rows
}

func insightRows(insights []analytics.Insight, lang analytics.Language) [][]any {
	rows := make([][]any, 0, len(insights))
	for _, in := range insights {
		rows = append(rows, []any{in.Rank, in.Category.Label(lang), roundTenth(in.Percent()), in.Narrative})
	}
	return rows
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
