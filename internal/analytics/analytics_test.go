package analytics

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/TobiSchelling/expedanalysis/internal/reviews"
)

func rv(company, province, topic, text string) reviews.Review {
	return reviews.Review{Company: company, Province: province, Topic: topic, ProcessedReviews: text}
}

const (
	topicDelay   = "Delay/ Lambat Pengiriman"
	topicService = "Kualitas Pelayan Buruk"
	topicComm    = "Komunikasi Kurir"
)

func sampleStore() []reviews.Review {
	return []reviews.Review{
		rv("JNE", "Bali", topicDelay, "paket telat sampai"),
		rv("JNE", "Bali", topicComm, "kurir tidak ramah"),
		rv("JNE", "Aceh", topicDelay, "paket telat lagi"),
		rv("SiCepat", "Bali", topicService, "gudang lambat"),
		rv("JNE", "Aceh", topicService, ""),
		rv("JNE", "Bali", topicDelay, "paket telat sampai rumah"),
	}
}

func TestFilterAllProvinces(t *testing.T) {
	got := Filter(sampleStore(), Criteria{Company: "JNE", Province: AllProvinces})
	if len(got) != 5 {
		t.Errorf("expected 5 reviews, got %d", len(got))
	}
	got = Filter(sampleStore(), Criteria{Company: "JNE"})
	if len(got) != 5 {
		t.Errorf("expected empty province to mean all, got %d", len(got))
	}
}

func TestFilterProvince(t *testing.T) {
	got := Filter(sampleStore(), Criteria{Company: "JNE", Province: "Aceh"})
	if len(got) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(got))
	}
	for _, r := range got {
		if r.Company != "JNE" || r.Province != "Aceh" {
			t.Errorf("unexpected review %+v", r)
		}
	}
}

func TestFilterNoMatch(t *testing.T) {
	got := Filter(sampleStore(), Criteria{Company: "Nobody"})
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil set, got %#v", got)
	}
}

func TestDistributionSumsToSetSize(t *testing.T) {
	store := sampleStore()
	for _, c := range []Criteria{
		{Company: "JNE"},
		{Company: "JNE", Province: "Bali"},
		{Company: "JNE", Province: "Aceh"},
		{Company: "SiCepat", Province: "Bali"},
		{Company: "SiCepat", Province: "Aceh"},
		{Company: "Nobody"},
	} {
		set := Filter(store, c)
		if got := TopicDistribution(set).Total(); got != len(set) {
			t.Errorf("%+v: distribution total %d != set size %d", c, got, len(set))
		}
	}
}

func TestDistributionOrdering(t *testing.T) {
	dist := TopicDistribution(Filter(sampleStore(), Criteria{Company: "JNE"}))
	want := Distribution{
		{Topic: topicDelay, Count: 3},
		{Topic: topicComm, Count: 1},
		{Topic: topicService, Count: 1},
	}
	if !reflect.DeepEqual(dist, want) {
		t.Errorf("expected %v, got %v", want, dist)
	}
	if dist.Count("missing") != 0 {
		t.Error("expected zero for absent topic")
	}
	if math.Abs(dist.Percent(topicDelay)-60) > 1e-9 {
		t.Errorf("expected 60%%, got %f", dist.Percent(topicDelay))
	}
}

func TestTopNgramsCountsAcrossReviews(t *testing.T) {
	set := Filter(sampleStore(), Criteria{Company: "JNE"})
	bigrams := TopNgrams(set, 2, 10)
	if len(bigrams) == 0 {
		t.Fatal("expected bigrams")
	}
	if bigrams[0].String() != "paket telat" || bigrams[0].Count != 3 {
		t.Errorf("expected 'paket telat' x3 first, got %q x%d", bigrams[0].String(), bigrams[0].Count)
	}
	if bigrams[1].String() != "telat sampai" || bigrams[1].Count != 2 {
		t.Errorf("expected 'telat sampai' x2 second, got %q x%d", bigrams[1].String(), bigrams[1].Count)
	}
	// remaining singletons keep first-seen order
	wantRest := []string{"kurir tidak", "tidak ramah", "telat lagi", "sampai rumah"}
	for i, w := range wantRest {
		if got := bigrams[2+i].String(); got != w {
			t.Errorf("position %d: expected %q, got %q", 2+i, w, got)
		}
	}

	trigrams := TopNgrams(set, 3, 10)
	if trigrams[0].String() != "paket telat sampai" || trigrams[0].Count != 2 {
		t.Errorf("unexpected top trigram %q x%d", trigrams[0].String(), trigrams[0].Count)
	}
}

func TestTopNgramsLengthAndMonotonic(t *testing.T) {
	set := []reviews.Review{
		rv("A", "P", "t", "a b c d e f g h i j k l m"),
		rv("A", "P", "t", "a b c x y"),
	}
	for _, k := range []int{1, 3, 10, 50} {
		got := TopNgrams(set, 2, k)
		distinct := 14 // 12 from the first review, c-x and x-y added by the second
		want := k
		if distinct < want {
			want = distinct
		}
		if len(got) != want {
			t.Errorf("k=%d: expected %d rows, got %d", k, want, len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Count > got[i-1].Count {
				t.Errorf("k=%d: counts increase at %d", k, i)
			}
		}
	}
}

func TestTopNgramsShortAndEmpty(t *testing.T) {
	if got := TopNgrams([]reviews.Review{rv("A", "P", "t", "satu dua")}, 3, 10); len(got) != 0 {
		t.Errorf("expected no trigrams from a two-token text, got %v", got)
	}
	if got := TopNgrams(nil, 2, 10); got == nil || len(got) != 0 {
		t.Errorf("expected empty table for empty set, got %#v", got)
	}
	if got := TopNgrams([]reviews.Review{rv("A", "P", "t", "")}, 2, 0); len(got) != 0 {
		t.Errorf("expected empty table for empty text, got %v", got)
	}
}

func TestWordTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"paket  telat", []string{"paket", "telat"}},
		{"paket telat!", []string{"paket", "telat", "!"}},
		{"kurir, tidak ramah...", []string{"kurir", ",", "tidak", "ramah", "..."}},
		{"harga 12.500 rupiah", []string{"harga", "12.500", "rupiah"}},
		{"anti-gores (murah)", []string{"anti-gores", "(", "murah", ")"}},
		{"don't stop", []string{"don't", "stop"}},
		{"akhir-", []string{"akhir", "-"}},
	}
	for _, tt := range tests {
		got := WordTokenize(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("WordTokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func distOf(delay, comm, service int) Distribution {
	var d Distribution
	if delay > 0 {
		d = append(d, TopicCount{Topic: topicDelay, Count: delay})
	}
	if comm > 0 {
		d = append(d, TopicCount{Topic: topicComm, Count: comm})
	}
	if service > 0 {
		d = append(d, TopicCount{Topic: topicService, Count: service})
	}
	return d
}

func TestRankInsightsZeroTotal(t *testing.T) {
	got := RankInsights(distOf(0, 0, 0), DefaultCategoryMap(), Indonesian)
	if len(got) != 0 {
		t.Errorf("expected no insights, got %v", got)
	}
	other := Distribution{{Topic: "Lainnya", Count: 4}}
	if got := RankInsights(other, DefaultCategoryMap(), Indonesian); len(got) != 0 {
		t.Errorf("expected unmapped topics to be ignored, got %v", got)
	}
}

func TestRankInsightsOrderAndPercentages(t *testing.T) {
	got := RankInsights(distOf(6, 3, 1), DefaultCategoryMap(), Indonesian)
	if len(got) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(got))
	}
	wantCats := []Category{Delay, Communication, Service}
	wantPct := []float64{0.6, 0.3, 0.1}
	for i := range got {
		if got[i].Category != wantCats[i] {
			t.Errorf("rank %d: expected %v, got %v", i+1, wantCats[i], got[i].Category)
		}
		if math.Abs(got[i].Percentage-wantPct[i]) > 1e-9 {
			t.Errorf("rank %d: expected %.2f, got %.4f", i+1, wantPct[i], got[i].Percentage)
		}
		if got[i].Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, got[i].Rank)
		}
	}
	if got[0].Key != "keterlambatan pengiriman" {
		t.Errorf("unexpected key %q", got[0].Key)
	}
	if !strings.Contains(got[0].Narrative, "didominasi oleh keterlambatan pengiriman (60.0%)") {
		t.Errorf("unexpected first narrative %q", got[0].Narrative)
	}
	if !strings.HasPrefix(got[1].Narrative, "Kemudian") || !strings.Contains(got[1].Narrative, "(30.0%)") {
		t.Errorf("unexpected second narrative %q", got[1].Narrative)
	}
	if !strings.HasPrefix(got[2].Narrative, "Terakhir") || !strings.Contains(got[2].Narrative, "(10.0%)") {
		t.Errorf("unexpected third narrative %q", got[2].Narrative)
	}
}

func TestRankInsightsTieBreakCanonicalOrder(t *testing.T) {
	got := RankInsights(distOf(2, 2, 2), DefaultCategoryMap(), English)
	want := []Category{Delay, Service, Communication}
	for i := range want {
		if got[i].Category != want[i] {
			t.Errorf("rank %d: expected %v, got %v", i+1, want[i], got[i].Category)
		}
	}

	got = RankInsights(distOf(0, 5, 5), DefaultCategoryMap(), English)
	if len(got) != 2 {
		t.Fatalf("expected zero-share category dropped, got %d insights", len(got))
	}
	if got[0].Category != Service || got[1].Category != Communication {
		t.Errorf("expected service before communication on tie, got %v, %v", got[0].Category, got[1].Category)
	}
	if !strings.Contains(got[0].Narrative, "poor service quality (50.0%)") {
		t.Errorf("unexpected narrative %q", got[0].Narrative)
	}
}

func TestRankInsightsMergesTopicsPerCategory(t *testing.T) {
	cats := DefaultCategoryMap()
	cats["Paket Terlambat"] = Delay
	dist := Distribution{
		{Topic: topicComm, Count: 3},
		{Topic: topicDelay, Count: 2},
		{Topic: "Paket Terlambat", Count: 2},
	}
	got := RankInsights(dist, cats, English)
	if got[0].Category != Delay {
		t.Errorf("expected merged delay topics to rank first, got %v", got[0].Category)
	}
}

func TestCommonWordsAndJoin(t *testing.T) {
	set := Filter(sampleStore(), Criteria{Company: "JNE"})
	words := CommonWords(set, 5)
	want := []string{"paket", "telat", "sampai", "kurir", "tidak"}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("expected %v, got %v", want, words)
	}
	if got := JoinWords(words, "dan"); got != "paket, telat, sampai, kurir dan tidak" {
		t.Errorf("unexpected join %q", got)
	}
	if got := JoinWords([]string{"paket"}, "dan"); got != "paket" {
		t.Errorf("unexpected single join %q", got)
	}
	if got := JoinWords(nil, "dan"); got != "" {
		t.Errorf("expected empty join, got %q", got)
	}
}

func TestEmptySetProducesEmptyOutputs(t *testing.T) {
	set := Filter(sampleStore(), Criteria{Company: "Nobody"})
	if CorpusText(set) != "" {
		t.Error("expected empty word cloud input")
	}
	if len(WordCloud(set, 50)) != 0 {
		t.Error("expected empty word cloud")
	}
	dist := TopicDistribution(set)
	if len(dist) != 0 {
		t.Error("expected empty pie data")
	}
	if len(TopNgrams(set, 2, 10)) != 0 || len(TopNgrams(set, 3, 10)) != 0 {
		t.Error("expected empty n-gram tables")
	}
	insights := RankInsights(dist, DefaultCategoryMap(), Indonesian)
	if Diagnosis(insights, set, Indonesian) != "" {
		t.Error("expected no diagnosis")
	}
	if len(Advice(dist, DefaultCategoryMap(), Indonesian)) != 0 {
		t.Error("expected no advice")
	}
}

func TestWordCloudWeights(t *testing.T) {
	set := Filter(sampleStore(), Criteria{Company: "JNE"})
	cloud := WordCloud(set, 3)
	if len(cloud) != 3 {
		t.Fatalf("expected 3 words, got %d", len(cloud))
	}
	if cloud[0].Word != "paket" || cloud[0].Weight != 1 {
		t.Errorf("unexpected top word %+v", cloud[0])
	}
	if cloud[2].Weight >= cloud[0].Weight {
		t.Errorf("expected decreasing weights, got %+v", cloud)
	}
}

func TestDiagnosis(t *testing.T) {
	set := Filter(sampleStore(), Criteria{Company: "JNE"})
	insights := RankInsights(TopicDistribution(set), DefaultCategoryMap(), Indonesian)
	got := Diagnosis(insights, set, Indonesian)
	if !strings.Contains(got, "masalah utama yang terjadi adalah keterlambatan pengiriman") {
		t.Errorf("unexpected diagnosis %q", got)
	}
	if !strings.Contains(got, "seperti paket, telat, sampai, kurir dan tidak.") {
		t.Errorf("expected common words in diagnosis, got %q", got)
	}

	blank := []reviews.Review{rv("JNE", "Bali", topicDelay, "")}
	insights = RankInsights(TopicDistribution(blank), DefaultCategoryMap(), Indonesian)
	if got := Diagnosis(insights, blank, Indonesian); got != "" {
		t.Errorf("expected diagnosis omitted without words, got %q", got)
	}
}

func TestAdvice(t *testing.T) {
	dist := Distribution{{Topic: topicComm, Count: 2}, {Topic: topicDelay, Count: 1}}
	got := Advice(dist, DefaultCategoryMap(), Indonesian)
	if len(got) != 3 {
		t.Fatalf("expected delay, communication and closing blocks, got %d", len(got))
	}
	if !strings.Contains(got[0], "Keterlambatan Pengiriman") {
		t.Errorf("expected delay advice first, got %q", got[0])
	}
	if !strings.Contains(got[1], "Komunikasi Kurir") {
		t.Errorf("expected courier advice second, got %q", got[1])
	}
	if !strings.Contains(got[2], "Monitoring dan Evaluasi") {
		t.Errorf("expected closing block last, got %q", got[2])
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLanguage(" EN "); err != nil || l != English {
		t.Errorf("ParseLanguage: got %v, %v", l, err)
	}
	if _, err := ParseLanguage("fr"); err == nil {
		t.Error("expected error for unknown language")
	}
	if c, err := ParseCategory("Communication"); err != nil || c != Communication {
		t.Errorf("ParseCategory: got %v, %v", c, err)
	}
	if _, err := ParseCategory("weather"); err == nil {
		t.Error("expected error for unknown category")
	}
}
