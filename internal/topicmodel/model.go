// Package topicmodel holds a pre-trained LDA topic model and infers
// topic distributions for single documents.
package topicmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

const (
	defaultMaxIterations = 100
	defaultTolerance     = 1e-5
)

// ErrInvalidArtifact is returned for a model file that cannot be used.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// Artifact is the serialized model: topic labels in topic-id order, the
// Dirichlet prior, the token dictionary and the topic-word matrix.
type Artifact struct {
	Labels     []string       `json:"labels"`
	Alpha      float64        `json:"alpha"`
	Vocabulary map[string]int `json:"vocabulary"`
	Topics     [][]float64    `json:"topics"`
}

// Validate checks the artifact's shape.
func (a *Artifact) Validate() error {
	k := len(a.Labels)
	if k < 2 {
		return fmt.Errorf("%w: need at least 2 topics, got %d", ErrInvalidArtifact, k)
	}
	if len(a.Topics) != k {
		return fmt.Errorf("%w: %d labels but %d topic rows", ErrInvalidArtifact, k, len(a.Topics))
	}
	v := len(a.Vocabulary)
	if v == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrInvalidArtifact)
	}
	for i, row := range a.Topics {
		if len(row) != v {
			return fmt.Errorf("%w: topic %d has %d weights, vocabulary has %d", ErrInvalidArtifact, i, len(row), v)
		}
		for _, w := range row {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("%w: topic %d has weight %v", ErrInvalidArtifact, i, w)
			}
		}
	}
	seen := make([]bool, v)
	for tok, id := range a.Vocabulary {
		if id < 0 || id >= v {
			return fmt.Errorf("%w: token %q has id %d outside [0,%d)", ErrInvalidArtifact, tok, id, v)
		}
		if seen[id] {
			return fmt.Errorf("%w: id %d assigned twice", ErrInvalidArtifact, id)
		}
		seen[id] = true
	}
	if a.Alpha < 0 {
		return fmt.Errorf("%w: negative alpha", ErrInvalidArtifact)
	}
	return nil
}

// Save writes the artifact as JSON.
func (a *Artifact) Save(path string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// TopicProbability is one topic's share of a document.
type TopicProbability struct {
	ID          int     `json:"id"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Model is an immutable loaded topic model, safe for concurrent use.
type Model struct {
	labels []string
	alpha  float64
	vocab  map[string]int
	beta   *mat.Dense // topics x vocabulary, rows sum to 1

	maxIterations int
	tolerance     float64
}

// Load reads a JSON artifact from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return New(&a)
}

// New builds a Model from an artifact. Topic rows are normalized; a zero
// alpha becomes 1/K.
func New(a *Artifact) (*Model, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	k, v := len(a.Topics), len(a.Vocabulary)
	beta := mat.NewDense(k, v, nil)
	for i, row := range a.Topics {
		sum := floats.Sum(row)
		if sum == 0 {
			return nil, fmt.Errorf("%w: topic %d has no weight", ErrInvalidArtifact, i)
		}
		for j, w := range row {
			beta.Set(i, j, w/sum)
		}
	}

	alpha := a.Alpha
	if alpha == 0 {
		alpha = 1 / float64(k)
	}
	vocab := make(map[string]int, v)
	for tok, id := range a.Vocabulary {
		vocab[tok] = id
	}
	return &Model{
		labels:        append([]string(nil), a.Labels...),
		alpha:         alpha,
		vocab:         vocab,
		beta:          beta,
		maxIterations: defaultMaxIterations,
		tolerance:     defaultTolerance,
	}, nil
}

// Labels returns topic labels in topic-id order.
func (m *Model) Labels() []string {
	return append([]string(nil), m.labels...)
}

// NumTopics returns the model's topic count.
func (m *Model) NumTopics() int {
	return len(m.labels)
}

// Infer returns the probability of every topic for the document made of
// tokens, in topic-id order. Tokens outside the dictionary are ignored;
// a document with no known tokens gets the prior, which is uniform.
func (m *Model) Infer(tokens []string) []TopicProbability {
	ids, counts := m.bagOfWords(tokens)
	theta := m.inferTheta(ids, counts)

	out := make([]TopicProbability, len(m.labels))
	for k, label := range m.labels {
		out[k] = TopicProbability{ID: k, Label: label, Probability: theta[k]}
	}
	return out
}

// bagOfWords returns dictionary ids in first-seen order with their counts.
func (m *Model) bagOfWords(tokens []string) ([]int, []float64) {
	pos := make(map[int]int)
	var ids []int
	var counts []float64
	for _, tok := range tokens {
		id, ok := m.vocab[tok]
		if !ok {
			continue
		}
		if i, seen := pos[id]; seen {
			counts[i]++
			continue
		}
		pos[id] = len(ids)
		ids = append(ids, id)
		counts = append(counts, 1)
	}
	return ids, counts
}

// inferTheta runs mean-field variational inference for one document with
// the topic-word matrix held fixed and returns normalized gamma.
func (m *Model) inferTheta(ids []int, counts []float64) []float64 {
	k := len(m.labels)
	gamma := make([]float64, k)
	total := floats.Sum(counts)
	for i := range gamma {
		gamma[i] = m.alpha + total/float64(k)
	}

	if len(ids) > 0 {
		expElog := make([]float64, k)
		next := make([]float64, k)
		phi := make([]float64, k)
		for iter := 0; iter < m.maxIterations; iter++ {
			for i, g := range gamma {
				expElog[i] = math.Exp(mathext.Digamma(g))
			}
			for i := range next {
				next[i] = m.alpha
			}
			for n, id := range ids {
				for i := range phi {
					phi[i] = expElog[i] * m.beta.At(i, id)
				}
				norm := floats.Sum(phi)
				if norm == 0 {
					continue
				}
				floats.AddScaled(next, counts[n]/norm, phi)
			}
			change := floats.Distance(next, gamma, 1) / float64(k)
			copy(gamma, next)
			if change < m.tolerance {
				break
			}
		}
	}

	floats.Scale(1/floats.Sum(gamma), gamma)
	return gamma
}
