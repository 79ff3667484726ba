package topicmodel

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func testArtifact() *Artifact {
	return &Artifact{
		Labels: []string{"Delay/ Lambat Pengiriman", "Komunikasi Kurir", "Kualitas Pelayan Buruk"},
		Alpha:  0.1,
		Vocabulary: map[string]int{
			"telat": 0, "lambat": 1,
			"kurir": 2, "kasar": 3,
			"gudang": 4, "pelayanan": 5,
		},
		Topics: [][]float64{
			{0.45, 0.45, 0.025, 0.025, 0.025, 0.025},
			{0.025, 0.025, 0.45, 0.45, 0.025, 0.025},
			{0.025, 0.025, 0.025, 0.025, 0.45, 0.45},
		},
	}
}

func sumProb(probs []TopicProbability) float64 {
	s := 0.0
	for _, p := range probs {
		s += p.Probability
	}
	return s
}

func TestInferCoversAllTopicsInOrder(t *testing.T) {
	m, err := New(testArtifact())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := m.Infer([]string{"kurir", "kasar", "kurir", "telat"})
	if len(got) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(got))
	}
	for i, p := range got {
		if p.ID != i {
			t.Errorf("expected native order, position %d has id %d", i, p.ID)
		}
	}
	if got[1].Label != "Komunikasi Kurir" {
		t.Errorf("unexpected label %q", got[1].Label)
	}
	if math.Abs(sumProb(got)-1) > 1e-9 {
		t.Errorf("probabilities sum to %f", sumProb(got))
	}
	if !(got[1].Probability > got[0].Probability && got[0].Probability > got[2].Probability) {
		t.Errorf("expected courier > delay > service, got %+v", got)
	}
}

func TestInferDeterministic(t *testing.T) {
	m, _ := New(testArtifact())
	a := m.Infer([]string{"gudang", "pelayanan", "lambat"})
	b := m.Infer([]string{"gudang", "pelayanan", "lambat"})
	for i := range a {
		if a[i].Probability != b[i].Probability {
			t.Fatalf("inference not deterministic at topic %d", i)
		}
	}
	if a[2].Probability < 0.5 {
		t.Errorf("expected service topic to dominate, got %+v", a)
	}
}

func TestInferUnknownOrEmptyIsUniform(t *testing.T) {
	m, _ := New(testArtifact())
	for _, tokens := range [][]string{nil, {"tidak", "dikenal"}} {
		got := m.Infer(tokens)
		if len(got) != 3 {
			t.Fatalf("expected 3 topics, got %d", len(got))
		}
		for _, p := range got {
			if math.Abs(p.Probability-1.0/3) > 1e-9 {
				t.Errorf("expected uniform prior for %v, got %+v", tokens, got)
			}
		}
	}
}

func TestNewNormalizesRowsAndDefaultsAlpha(t *testing.T) {
	a := testArtifact()
	a.Alpha = 0
	a.Topics[0] = []float64{9, 9, 0.5, 0.5, 0.5, 0.5}
	m, err := New(a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if math.Abs(m.alpha-1.0/3) > 1e-12 {
		t.Errorf("expected alpha 1/K, got %f", m.alpha)
	}
	rowSum := 0.0
	for w := 0; w < 6; w++ {
		rowSum += m.beta.At(0, w)
	}
	if math.Abs(rowSum-1) > 1e-12 {
		t.Errorf("expected normalized row, got sum %f", rowSum)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"one label", func(a *Artifact) { a.Labels = a.Labels[:1]; a.Topics = a.Topics[:1] }},
		{"row count", func(a *Artifact) { a.Topics = a.Topics[:2] }},
		{"row width", func(a *Artifact) { a.Topics[1] = a.Topics[1][:5] }},
		{"negative weight", func(a *Artifact) { a.Topics[0][0] = -1 }},
		{"id out of range", func(a *Artifact) { a.Vocabulary["telat"] = 6 }},
		{"duplicate id", func(a *Artifact) { a.Vocabulary["telat"] = 1 }},
		{"empty vocabulary", func(a *Artifact) { a.Vocabulary = map[string]int{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testArtifact()
			tt.mutate(a)
			if err := a.Validate(); !errors.Is(err, ErrInvalidArtifact) {
				t.Errorf("expected ErrInvalidArtifact, got %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "model.json")
	if err := testArtifact().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.NumTopics() != 3 || m.Labels()[2] != "Kualitas Pelayan Buruk" {
		t.Errorf("unexpected labels %v", m.Labels())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestTrainProducesValidArtifact(t *testing.T) {
	docs := []string{
		"paket telat sampai lambat sekali",
		"pengiriman telat lambat paket",
		"kurir kasar tidak ramah",
		"kurir lempar paket kasar",
		"gudang pelayanan buruk antre",
		"pelayanan gudang lambat buruk",
	}
	a, err := Train(docs, []string{"delay", "courier", "service"}, TrainOptions{Iterations: 20, TransformationPasses: 10, Processes: 1})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(a.Topics) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(a.Topics))
	}
	if _, ok := a.Vocabulary["kurir"]; !ok {
		t.Error("expected 'kurir' in vocabulary")
	}
	for k, row := range a.Topics {
		sum := 0.0
		for _, w := range row {
			sum += w
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("topic %d sums to %f", k, sum)
		}
	}
	if _, err := New(a); err != nil {
		t.Errorf("trained artifact not loadable: %v", err)
	}
}

func TestTrainRejectsBadInput(t *testing.T) {
	if _, err := Train([]string{"a b"}, []string{"only"}, TrainOptions{}); err == nil {
		t.Error("expected error for a single label")
	}
	if _, err := Train(nil, []string{"a", "b"}, TrainOptions{}); err == nil {
		t.Error("expected error for no documents")
	}
}
