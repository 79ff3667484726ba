package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/TobiSchelling/expedanalysis/internal/analytics"
	"github.com/TobiSchelling/expedanalysis/internal/pipeline"
)

// HTTPError is a JSON API error, written as {"error": Message}.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, e *HTTPError) {
	writeJSON(w, e.Code, map[string]string{"error": e.Message})
}

type topicShare struct {
	Topic   string  `json:"topic"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type ngramRow struct {
	Ngram string `json:"ngram"`
	Count int    `json:"count"`
}

type analysisResponse struct {
	Company      string                 `json:"company"`
	Province     string                 `json:"province"`
	Count        int                    `json:"count"`
	Empty        bool                   `json:"empty"`
	Distribution []topicShare           `json:"distribution"`
	Insights     []analytics.Insight    `json:"insights"`
	Diagnosis    string                 `json:"diagnosis,omitempty"`
	WordCloud    []analytics.WordWeight `json:"word_cloud"`
	Bigrams      []ngramRow             `json:"bigrams"`
	Trigrams     []ngramRow             `json:"trigrams"`
	Advice       []string               `json:"advice"`
}

func toNgramRows(ngrams []analytics.NgramCount) []ngramRow {
	rows := make([]ngramRow, len(ngrams))
	for i, ng := range ngrams {
		rows[i] = ngramRow{Ngram: ng.String(), Count: ng.Count}
	}
	return rows
}

func toAnalysisResponse(r *pipeline.Report) analysisResponse {
	province := r.Criteria.Province
	if r.Criteria.AnyProvince() {
		province = analytics.AllProvinces
	}
	shares := make([]topicShare, len(r.Distribution))
	for i, tc := range r.Distribution {
		shares[i] = topicShare{Topic: tc.Topic, Count: tc.Count, Percent: r.Distribution.Percent(tc.Topic)}
	}
	return analysisResponse{
		Company:      r.Criteria.Company,
		Province:     province,
		Count:        r.Count,
		Empty:        r.Empty,
		Distribution: shares,
		Insights:     r.Insights,
		Diagnosis:    r.Diagnosis,
		WordCloud:    r.WordCloud,
		Bigrams:      toNgramRows(r.Bigrams),
		Trigrams:     toNgramRows(r.Trigrams),
		Advice:       r.Advice,
	}
}

func (s *Server) handleAPIAnalysis(w http.ResponseWriter, r *http.Request) {
	report, err := s.pipe.Run(criteriaFrom(r))
	if err != nil {
		log.Error().Err(err).Msg("running analysis")
		writeError(w, &HTTPError{Code: http.StatusInternalServerError, Message: "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisResponse(report))
}

type inferRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAPIInfer(w http.ResponseWriter, r *http.Request) {
	var req inferRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, &HTTPError{Code: http.StatusBadRequest, Message: "invalid JSON body"})
		return
	}

	inf, err := s.pipe.Infer(userFrom(r.Context()).Company, req.Text)
	var pe *pipeline.PreprocessError
	switch {
	case errors.Is(err, pipeline.ErrEmptyInput):
		writeError(w, &HTTPError{Code: http.StatusBadRequest, Message: err.Error()})
	case errors.As(err, &pe):
		writeError(w, &HTTPError{Code: http.StatusUnprocessableEntity, Message: pe.Error()})
	case err != nil:
		log.Error().Err(err).Msg("inference")
		writeError(w, &HTTPError{Code: http.StatusInternalServerError, Message: "internal server error"})
	default:
		writeJSON(w, http.StatusOK, inf)
	}
}
