// Package server exposes the dashboard over HTTP: uploads, the
// aggregated summary, exports, budgets and the proxied administrative
// endpoints the rate-limit views use.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyunseo/orgusage/internal/orgapi"
	"github.com/hyunseo/orgusage/internal/output"
	"github.com/hyunseo/orgusage/internal/settings"
	"github.com/hyunseo/orgusage/internal/store"
	"github.com/hyunseo/orgusage/internal/types"
)

const maxUploadBytes = 50 << 20

type Server struct {
	store  *store.Store
	cfg    *settings.Config
	logger *zap.Logger
}

func New(st *store.Store, cfg *settings.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: st, cfg: cfg, logger: logger}
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /export", s.handleExport)

	mux.HandleFunc("GET /budgets", s.handleBudgets)
	mux.HandleFunc("PUT /budgets/{projectID}", s.handleSetBudget)
	mux.HandleFunc("DELETE /budgets/{projectID}", s.handleRemoveBudget)

	mux.HandleFunc("GET /org/projects", s.handleOrgProjects)
	mux.HandleFunc("GET /org/users", s.handleOrgUsers)
	mux.HandleFunc("POST /org/userinfo", s.handleBuildUserinfo)
	mux.HandleFunc("GET /org/rate_limits", s.handleAllRateLimits)
	mux.HandleFunc("GET /projects/{projectID}/rate_limits", s.handleProjectRateLimits)
	mux.HandleFunc("POST /projects/{projectID}/rate_limits/{rateLimitID}", s.handleUpdateRateLimit)

	mux.HandleFunc("POST /rate_limit_template/save", s.handleSaveTemplate)
	mux.HandleFunc("GET /rate_limit_template/load/{name}", s.handleLoadTemplate)
	mux.HandleFunc("POST /rate_limit_template/apply", s.handleApplyTemplate)

	limiter := NewIPRateLimiter(20, 40)
	return RequestLogger(s.logger)(SecurityHeaders(limiter.Limit(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload runs the full ingestion path. Failures are reported
// inline and never disturb previously loaded data.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload body")
		return
	}

	cls, err := s.store.LoadUpload(raw)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"kind":      cls.Kind,
		"ambiguous": cls.Ambiguous,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.store.Summary()
	if summary == nil {
		writeError(w, http.StatusNotFound, types.ErrNoData.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	summary := s.store.Summary()
	if summary == nil {
		writeError(w, http.StatusNotFound, types.ErrNoData.Error())
		return
	}

	format := r.URL.Query().Get("format")
	formatter := output.NewFormatter(output.FormatterOptions{Format: format, NoColor: true})

	switch format {
	case "csv":
		body, err := formatter.FormatSummary(summary)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="usage_data.csv"`)
		_, _ = w.Write([]byte(body))
	case "", "json":
		w.Header().Set("Content-Disposition", `attachment; filename="usage_data.json"`)
		writeJSON(w, http.StatusOK, summary)
	default:
		writeError(w, http.StatusBadRequest, "unsupported export format: "+format)
	}
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"budgets":  s.store.Budgets(),
		"overages": s.store.Overages(),
	})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var budget types.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget body")
		return
	}
	if budget.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "budget amount must be positive")
		return
	}
	s.store.SetBudget(r.PathValue("projectID"), budget)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleRemoveBudget(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveBudget(r.PathValue("projectID"))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleOrgProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.orgClient(r).ListProjects(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	// Listing projects also refreshes the display names the summary
	// resolves project ids against.
	s.store.SetProjects(projects)
	writeJSON(w, http.StatusOK, map[string]any{"data": projects, "success": true})
}

func (s *Server) handleOrgUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.orgClient(r).ListUsers(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": users, "success": true})
}

func (s *Server) handleBuildUserinfo(w http.ResponseWriter, r *http.Request) {
	identity, err := s.orgClient(r).BuildIdentityMap(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.store.SetIdentity(identity)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"user_count": len(identity),
		"data":       identity,
	})
}

func (s *Server) handleAllRateLimits(w http.ResponseWriter, r *http.Request) {
	client := s.orgClient(r)
	projects, err := client.ListProjects(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	all, err := client.AllRateLimits(r.Context(), projects)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": all, "success": true})
}

func (s *Server) handleProjectRateLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := s.orgClient(r).ProjectRateLimits(r.Context(), r.PathValue("projectID"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": limits, "success": true})
}

func (s *Server) handleUpdateRateLimit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MaxRequestsPer1Minute int `json:"max_requests_per_1_minute"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid rate limit body")
		return
	}
	if body.MaxRequestsPer1Minute <= 0 {
		writeError(w, http.StatusBadRequest, "max_requests_per_1_minute must be positive")
		return
	}

	updated, err := s.orgClient(r).UpdateRateLimit(
		r.Context(),
		r.PathValue("projectID"),
		r.PathValue("rateLimitID"),
		body.MaxRequestsPer1Minute,
	)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": updated, "success": true})
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateName string            `json:"template_name"`
		TemplateData []orgapi.RateLimit `json:"template_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid template body")
		return
	}
	if body.TemplateName == "" {
		body.TemplateName = "default"
	}
	if err := orgapi.SaveTemplate(s.cfg.TemplateDir, body.TemplateName, body.TemplateData); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleLoadTemplate(w http.ResponseWriter, r *http.Request) {
	limits, err := orgapi.LoadTemplate(s.cfg.TemplateDir, r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": limits, "success": true})
}

func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID    string `json:"project_id"`
		TemplateName string `json:"template_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "invalid apply body")
		return
	}
	if body.TemplateName == "" {
		body.TemplateName = "default"
	}

	limits, err := orgapi.LoadTemplate(s.cfg.TemplateDir, body.TemplateName)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	applied, err := s.orgClient(r).ApplyTemplate(r.Context(), body.ProjectID, limits)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "applied": applied})
}

// orgClient builds a client for this request, preferring a key supplied
// by the caller over the configured one. Keys are forwarded, never
// stored server-side.
func (s *Server) orgClient(r *http.Request) *orgapi.Client {
	key := r.Header.Get("X-Admin-Api-Key")
	if key == "" {
		if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
			key = auth[7:]
		}
	}
	if key == "" {
		key = s.cfg.AdminAPIKey
	}
	return orgapi.NewClient(s.cfg.OrgAPIBase, key, orgapi.WithLogger(s.logger))
}

func statusFor(err error) int {
	var (
		parseErr      types.ParseError
		validationErr types.ValidationError
		apiErr        types.APIError
	)
	switch {
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrMissingAdminKey):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusForbidden {
			return http.StatusForbidden
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mirrors the {"detail": ...} error body the dashboard's
// fetch layer extracts messages from.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
