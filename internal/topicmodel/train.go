package topicmodel

import (
	"fmt"

	"github.com/james-bowman/nlp"
)

// TrainOptions tunes LDA fitting. Zero values keep the library defaults.
type TrainOptions struct {
	Iterations           int
	TransformationPasses int
	Processes            int
	Alpha                float64
	Eta                  float64
	Stopwords            []string
}

// smoothing keeps every topic-word weight positive so unseen
// combinations never zero out a topic during inference.
const smoothing = 1e-9

// Train fits an LDA model with one topic per label over docs and returns
// the resulting artifact. Labels are assigned to topics in id order.
func Train(docs []string, labels []string, opts TrainOptions) (*Artifact, error) {
	if len(labels) < 2 {
		return nil, fmt.Errorf("need at least 2 topic labels, got %d", len(labels))
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to train on")
	}

	vectoriser := nlp.NewCountVectoriser(opts.Stopwords...)
	lda := nlp.NewLatentDirichletAllocation(len(labels))
	if opts.Iterations > 0 {
		lda.Iterations = opts.Iterations
	}
	if opts.TransformationPasses > 0 {
		lda.TransformationPasses = opts.TransformationPasses
	}
	if opts.Processes > 0 {
		lda.Processes = opts.Processes
	}
	if opts.Alpha > 0 {
		lda.Alpha = opts.Alpha
	}
	if opts.Eta > 0 {
		lda.Eta = opts.Eta
	}

	pipeline := nlp.NewPipeline(vectoriser, lda)
	if _, err := pipeline.FitTransform(docs...); err != nil {
		return nil, fmt.Errorf("fitting topic model: %w", err)
	}
	if len(vectoriser.Vocabulary) == 0 {
		return nil, fmt.Errorf("documents produced an empty vocabulary")
	}

	components := lda.Components()
	rows, cols := components.Dims()
	topics := make([][]float64, rows)
	for k := 0; k < rows; k++ {
		row := make([]float64, cols)
		sum := 0.0
		for w := 0; w < cols; w++ {
			row[w] = components.At(k, w) + smoothing
			sum += row[w]
		}
		for w := range row {
			row[w] /= sum
		}
		topics[k] = row
	}

	vocab := make(map[string]int, len(vectoriser.Vocabulary))
	for tok, id := range vectoriser.Vocabulary {
		vocab[tok] = id
	}

	a := &Artifact{
		Labels:     append([]string(nil), labels...),
		Alpha:      lda.Alpha,
		Vocabulary: vocab,
		Topics:     topics,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
