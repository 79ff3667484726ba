package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/TobiSchelling/expedanalysis/internal/analytics"
	"github.com/TobiSchelling/expedanalysis/internal/pipeline"
	"github.com/TobiSchelling/expedanalysis/internal/reviews"
)

func sampleReport() *pipeline.Report {
	set := []reviews.Review{
		{Company: "JNE", Province: "Bali", Topic: "Delay/ Lambat Pengiriman", ProcessedReviews: "paket telat sampai"},
		{Company: "JNE", Province: "Bali", Topic: "Delay/ Lambat Pengiriman", ProcessedReviews: "paket telat lagi"},
		{Company: "JNE", Province: "Bali", Topic: "Komunikasi Kurir", ProcessedReviews: "kurir tidak balas"},
	}
	dist := analytics.TopicDistribution(set)
	return &pipeline.Report{
		Criteria:     analytics.Criteria{Company: "JNE", Province: "Bali"},
		Count:        len(set),
		Distribution: dist,
		Insights:     analytics.RankInsights(dist, analytics.DefaultCategoryMap(), analytics.English),
		Bigrams:      analytics.TopNgrams(set, 2, 10),
		Trigrams:     analytics.TopNgrams(set, 3, 10),
	}
}

func readBack(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteReportSheets(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleReport(), analytics.English); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	f := readBack(t, &buf)

	want := []string{SheetSummary, SheetTopics, SheetBigrams, SheetTrigrams, SheetInsights}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	rows, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "JNE" || rows[1][1] != "Bali" || rows[1][2] != "3" {
		t.Errorf("unexpected summary rows %v", rows)
	}

	rows, _ = f.GetRows(SheetTopics)
	if len(rows) != 3 || rows[0][0] != "Topic" || rows[1][0] != "Delay/ Lambat Pengiriman" || rows[1][1] != "2" {
		t.Errorf("unexpected topic rows %v", rows)
	}

	rows, _ = f.GetRows(SheetBigrams)
	if len(rows) < 2 || rows[1][0] != "paket telat" || rows[1][1] != "2" {
		t.Errorf("unexpected bigram rows %v", rows)
	}

	rows, _ = f.GetRows(SheetInsights)
	if len(rows) != 3 || rows[1][1] != "delivery delays" {
		t.Errorf("unexpected insight rows %v", rows)
	}
}

func TestWriteReportEmpty(t *testing.T) {
	r := &pipeline.Report{Criteria: analytics.Criteria{Company: "JNE"}, Empty: true}

	var buf bytes.Buffer
	if err := WriteReport(&buf, r, analytics.Indonesian); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	f := readBack(t, &buf)

	rows, _ := f.GetRows(SheetSummary)
	if len(rows) != 2 || rows[0][0] != "Perusahaan" || rows[1][1] != analytics.AllProvinces || rows[1][2] != "0" {
		t.Errorf("unexpected summary rows %v", rows)
	}
	for _, sheet := range []string{SheetTopics, SheetBigrams, SheetTrigrams, SheetInsights} {
		rows, _ := f.GetRows(sheet)
		if len(rows) != 1 {
			t.Errorf("%s: expected header only, got %v", sheet, rows)
		}
	}
}

func TestRoundTenth(t *testing.T) {
	if got := roundTenth(66.666); got != 66.7 {
		t.Errorf("expected 66.7, got %v", got)
	}
}
