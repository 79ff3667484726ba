package server

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/TobiSchelling/expedanalysis/internal/analytics"
	"github.com/TobiSchelling/expedanalysis/internal/auth"
	"github.com/TobiSchelling/expedanalysis/internal/export"
	"github.com/TobiSchelling/expedanalysis/internal/pipeline"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auth.UserFromRequest(r); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, "login.html", map[string]any{"Email": ""})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))

	if !s.limiter.Allow(auth.ClientKey(r)) {
		s.render(w, http.StatusTooManyRequests, "login.html", map[string]any{
			"Error": s.text.TooManyLogins,
			"Email": email,
		})
		return
	}

	u, err := s.auth.Login(w, email, r.FormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.render(w, http.StatusUnauthorized, "login.html", map[string]any{
			"Error": s.text.LoginFailed,
			"Email": email,
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("login")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user", u.Email).Str("company", u.Company).Msg("login")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(w, r); err != nil {
		log.Error().Err(err).Msg("logout")
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// criteriaFrom builds filter criteria from the session tenant and the
// province query parameter.
func criteriaFrom(r *http.Request) analytics.Criteria {
	return analytics.Criteria{
		Company:  userFrom(r.Context()).Company,
		Province: strings.TrimSpace(r.URL.Query().Get("province")),
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	provinces, err := s.pipe.Provinces()
	if err != nil {
		log.Error().Err(err).Msg("listing provinces")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	c := criteriaFrom(r)
	data := map[string]any{
		"User":         user,
		"Provinces":    provinces,
		"AllProvinces": analytics.AllProvinces,
		"Selected":     c.Province,
	}

	if r.URL.Query().Has("province") {
		report, err := s.pipe.Run(c)
		if err != nil {
			log.Error().Err(err).Msg("running analysis")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		data["Report"] = report
		data["Pie"] = buildPie(report.Distribution)
		data["Cloud"] = buildCloud(report.WordCloud)
	}

	s.render(w, http.StatusOK, "dashboard.html", data)
}

func (s *Server) inferPageData(r *http.Request) map[string]any {
	user := userFrom(r.Context())
	data := map[string]any{"User": user, "Labels": s.pipe.Labels(), "Input": ""}
	if s.history != nil {
		recent, err := s.history.RecentInferences(user.Company, recentInferenceLimit)
		if err != nil {
			log.Warn().Err(err).Msg("loading inference history")
		}
		data["Recent"] = recent
	}
	return data
}

func (s *Server) handleInferPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "infer.html", s.inferPageData(r))
}

func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	text := r.FormValue("text")

	inf, err := s.pipe.Infer(user.Company, text)
	status := http.StatusOK
	var pe *pipeline.PreprocessError
	switch {
	case errors.Is(err, pipeline.ErrEmptyInput):
		status = http.StatusBadRequest
		err = errors.New(s.text.EmptyInput)
	case errors.As(err, &pe):
		status = http.StatusUnprocessableEntity
	case err != nil:
		log.Error().Err(err).Msg("inference")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := s.inferPageData(r)
	data["Input"] = text
	if err != nil {
		data["Error"] = err.Error()
	} else {
		data["Inference"] = inf
		data["Top"] = inf.Top()
	}
	s.render(w, status, "infer.html", data)
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	c := criteriaFrom(r)
	report, err := s.pipe.Run(c)
	if err != nil {
		log.Error().Err(err).Msg("running analysis for export")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	province := analytics.AllProvinces
	if !c.AnyProvince() {
		province = c.Province
	}
	name := fmt.Sprintf("expedanalysis-%s-%s.xlsx",
		unsafeFilename.ReplaceAllString(c.Company, "_"),
		unsafeFilename.ReplaceAllString(province, "_"))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteReport(w, report, s.pipe.Variant().Language); err != nil {
		log.Error().Err(err).Msg("writing workbook")
	}
}
