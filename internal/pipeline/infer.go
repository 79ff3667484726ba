package pipeline

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/TobiSchelling/expedanalysis/internal/database"
	"github.com/TobiSchelling/expedanalysis/internal/preprocess"
	"github.com/TobiSchelling/expedanalysis/internal/topicmodel"
)

// Inference is the result of classifying one free-text review.
type Inference struct {
	ID        string                        `json:"id,omitempty"`
	Company   string                        `json:"-"`
	Input     string                        `json:"input"`
	Processed string                        `json:"processed"`
	Topics    []topicmodel.TopicProbability `json:"topics"`
}

// Top returns the most probable topic. The first topic wins ties.
func (inf *Inference) Top() topicmodel.TopicProbability {
	var best topicmodel.TopicProbability
	for i, t := range inf.Topics {
		if i == 0 || t.Probability > best.Probability {
			best = t
		}
	}
	return best
}

// Infer classifies raw review text for company. Blank input fails with
// ErrEmptyInput before the preprocessor runs; preprocessor failures come
// back as *PreprocessError. Topics cover every label in model order.
func (p *Pipeline) Infer(company, raw string) (*Inference, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	processed, err := p.prep.Process(raw)
	if err != nil {
		return nil, &PreprocessError{Err: err}
	}

	inf := &Inference{
		Company:   company,
		Input:     raw,
		Processed: processed,
		Topics:    p.model.Infer(preprocess.Tokens(processed)),
	}

	if p.recorder != nil {
		id, err := p.recorder.RecordInference(toRecord(inf))
		if err != nil {
			log.Warn().Err(err).Msg("recording inference")
		} else {
			inf.ID = id
		}
	}
	return inf, nil
}

func toRecord(inf *Inference) database.InferenceRecord {
	scores := make([]database.TopicScore, len(inf.Topics))
	for i, t := range inf.Topics {
		scores[i] = database.TopicScore{Label: t.Label, Probability: t.Probability}
	}
	return database.InferenceRecord{
		Company:       inf.Company,
		InputText:     inf.Input,
		ProcessedText: inf.Processed,
		TopLabel:      inf.Top().Label,
		Scores:        scores,
	}
}
