// Package pipeline holds the analytics context shared by every request:
// the review source, preprocessor, topic model and presentation variant.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/TobiSchelling/expedanalysis/internal/analytics"
	"github.com/TobiSchelling/expedanalysis/internal/database"
	"github.com/TobiSchelling/expedanalysis/internal/reviews"
	"github.com/TobiSchelling/expedanalysis/internal/topicmodel"
)

var (
	// ErrEmptyInput rejects blank inference text before preprocessing.
	ErrEmptyInput = errors.New("missing input: enter review text to analyse")
	// ErrPreprocessing is matched by every *PreprocessError.
	ErrPreprocessing = errors.New("preprocessing failed")
	// ErrNoCompany rejects criteria without a tenant.
	ErrNoCompany = errors.New("company is required")
)

// PreprocessError carries the preprocessor's own message so it can be
// shown to the user as-is.
type PreprocessError struct {
	Err error
}

func (e *PreprocessError) Error() string { return e.Err.Error() }

func (e *PreprocessError) Unwrap() []error { return []error{ErrPreprocessing, e.Err} }

// Preprocessor turns raw review text into processed text.
type Preprocessor interface {
	Process(raw string) (string, error)
}

// TopicModel scores processed tokens against a fixed label set.
type TopicModel interface {
	Labels() []string
	Infer(tokens []string) []topicmodel.TopicProbability
}

// InferenceRecorder persists inference results.
type InferenceRecorder interface {
	RecordInference(rec database.InferenceRecord) (string, error)
}

// Chart selects how the topic distribution is drawn.
type Chart string

const (
	ChartPie         Chart = "pie"
	ChartInteractive Chart = "interactive"
)

// Variant is the presentation variant: UI language, chart style and
// whether advisory blocks are produced.
type Variant struct {
	Language analytics.Language
	Chart    Chart
	Advisory bool
}

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
}

// Options configures New. Source, Preprocessor and Model are required.
type Options struct {
	Source       reviews.Source
	Preprocessor Preprocessor
	Model        TopicModel
	Categories   analytics.CategoryMap
	Variant      Variant
	Recorder     InferenceRecorder
	TopK         int
	CloudWords   int
}

// Pipeline is built once at startup and is safe for concurrent use: it
// only reads its collaborators.
type Pipeline struct {
	source     reviews.Source
	prep       Preprocessor
	model      TopicModel
	categories analytics.CategoryMap
	variant    Variant
	recorder   InferenceRecorder
	topK       int
	cloudWords int
}

// New validates opts and loads the review source once so that an
// unreadable store fails at startup rather than on the first request.
func New(opts Options) (*Pipeline, error) {
	if opts.Source == nil || opts.Preprocessor == nil || opts.Model == nil {
		return nil, errors.New("pipeline: source, preprocessor and model are required")
	}
	if _, err := opts.Source.Reviews(); err != nil {
		return nil, fmt.Errorf("loading review store: %w", err)
	}

	p := &Pipeline{
		source:     opts.Source,
		prep:       opts.Preprocessor,
		model:      opts.Model,
		categories: opts.Categories,
		variant:    opts.Variant,
		recorder:   opts.Recorder,
		topK:       opts.TopK,
		cloudWords: opts.CloudWords,
	}
	if p.categories == nil {
		p.categories = analytics.DefaultCategoryMap()
	}
	if p.variant.Language == "" {
		p.variant.Language = analytics.Indonesian
	}
	if p.variant.Chart == "" {
		p.variant.Chart = ChartPie
	}
	if p.topK <= 0 {
		p.topK = analytics.DefaultTopK
	}
	if p.cloudWords <= 0 {
		p.cloudWords = 100
	}
	return p, nil
}

// Variant returns the presentation variant the pipeline was built with.
func (p *Pipeline) Variant() Variant {
	return p.variant
}

// Labels returns the topic model's labels in topic-id order.
func (p *Pipeline) Labels() []string {
	return p.model.Labels()
}

// Provinces lists the distinct provinces of the whole store in
// first-seen order.
func (p *Pipeline) Provinces() ([]string, error) {
	all, err := p.source.Reviews()
	if err != nil {
		return nil, fmt.Errorf("loading review store: %w", err)
	}
	return reviews.Provinces(all), nil
}

// Report is everything one analysis run produces.
type Report struct {
	Criteria     analytics.Criteria
	Variant      Variant
	Count        int
	Empty        bool
	Distribution analytics.Distribution
	Insights     []analytics.Insight
	Diagnosis    string
	WordCloud    []analytics.WordWeight
	Bigrams      []analytics.NgramCount
	Trigrams     []analytics.NgramCount
	Advice       []string
	Steps        []StepResult
}

// Run filters the store by c and derives every table and text block. A
// filter that matches nothing is not an error: the report is Empty and
// every derived table is empty.
func (p *Pipeline) Run(c analytics.Criteria) (*Report, error) {
	if strings.TrimSpace(c.Company) == "" {
		return nil, ErrNoCompany
	}
	all, err := p.source.Reviews()
	if err != nil {
		return nil, fmt.Errorf("loading review store: %w", err)
	}

	r := &Report{Criteria: c, Variant: p.variant}
	var set []reviews.Review
	lang := p.variant.Language

	steps := []struct {
		name string
		run  func() string
	}{
		{"Filter", func() string {
			set = analytics.Filter(all, c)
			r.Count = len(set)
			r.Empty = len(set) == 0
			return fmt.Sprintf("%d of %d reviews match", len(set), len(all))
		}},
		{"Distribution", func() string {
			r.Distribution = analytics.TopicDistribution(set)
			return fmt.Sprintf("%d topics", len(r.Distribution))
		}},
		{"Insights", func() string {
			r.Insights = analytics.RankInsights(r.Distribution, p.categories, lang)
			return fmt.Sprintf("%d ranked insights", len(r.Insights))
		}},
		{"Word cloud", func() string {
			r.WordCloud = analytics.WordCloud(set, p.cloudWords)
			r.Diagnosis = analytics.Diagnosis(r.Insights, set, lang)
			return fmt.Sprintf("%d distinct words", len(r.WordCloud))
		}},
		{"N-grams", func() string {
			r.Bigrams = analytics.TopNgrams(set, 2, p.topK)
			r.Trigrams = analytics.TopNgrams(set, 3, p.topK)
			return fmt.Sprintf("%d bigrams, %d trigrams", len(r.Bigrams), len(r.Trigrams))
		}},
		{"Advice", func() string {
			if !p.variant.Advisory {
				r.Advice = []string{}
				return "disabled"
			}
			r.Advice = analytics.Advice(r.Distribution, p.categories, lang)
			return fmt.Sprintf("%d advisory blocks", len(r.Advice))
		}},
	}

	for i, s := range steps {
		log.Debug().Msgf("Step %d/%d: %s", i+1, len(steps), s.name)
		r.Steps = append(r.Steps, StepResult{Name: s.name, Summary: s.run()})
	}

	log.Debug().
		Str("company", c.Company).
		Str("province", c.Province).
		Int("reviews", r.Count).
		Msg("analysis complete")
	return r, nil
}
