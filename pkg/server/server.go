package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/rizkypratama/kolradar/internal/store"
	"github.com/rizkypratama/kolradar/pkg/catalog"
	"github.com/rizkypratama/kolradar/pkg/ranking"
	"github.com/rizkypratama/kolradar/pkg/recommend"
)

// Server provides the HTTP API.
type Server struct {
	store  store.Store
	engine *recommend.Engine
	ranker *ranking.Recomputer
	port   int
}

// New creates a new HTTP server.
func New(s store.Store, engine *recommend.Engine, ranker *ranking.Recomputer, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:  s,
		engine: engine,
		ranker: ranker,
		port:   port,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("kolradar server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler returns the API routing mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/kols", s.handleKOLs)
	mux.HandleFunc("/api/v1/recommendations", s.handleRecommendations)
	mux.HandleFunc("/api/v1/rankings", s.handleRankings)
	mux.HandleFunc("/api/v1/reports", s.handleReports)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKOLs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.KOLListOpts{
		Niche:    r.URL.Query().Get("niche"),
		AgeRange: r.URL.Query().Get("age_range"),
	}
	kols, err := s.store.ListKOLs(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  kols,
		"count": len(kols),
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	campaignID, ok := campaignIDParam(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "campaign not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	tier, err := s.store.GetKOLType(ctx, campaign.KOLTypeID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "kol type not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	kols, err := s.store.ListKOLs(ctx, store.KOLListOpts{})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	pool := catalog.FilterCandidates(kols, *tier, campaign.TargetNiche, campaign.TargetAgeRange)

	recs, err := s.engine.Recommend(*campaign, pool)
	if errors.Is(err, recommend.ErrInvalidTarget) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  recs,
		"count": len(recs),
	})
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	campaignID, ok := campaignIDParam(w, r)
	if !ok {
		return
	}

	reports, err := s.store.ListReportsByCampaign(r.Context(), campaignID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Ranking < reports[j].Ranking
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  reports,
		"count": len(reports),
	})
}

// handleReports covers create, update and delete. Every mutation triggers a
// full recomputation of the campaign's ranking; deleting a campaign's last
// report leaves nothing to rank and skips it.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createReport(w, r)
	case http.MethodPut:
		s.updateReport(w, r)
	case http.MethodDelete:
		s.deleteReport(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var report store.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return
	}
	if report.CampaignID <= 0 || report.KOLID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "campaign_id and kol_id are required"})
		return
	}

	ctx := r.Context()
	if err := s.store.CreateReport(ctx, &report); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if _, err := s.ranker.Recompute(ctx, report.CampaignID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	created, err := s.store.GetReport(ctx, report.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": created})
}

func (s *Server) updateReport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	ctx := r.Context()
	existing, err := s.store.GetReport(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var in store.Report
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return
	}

	existing.Likes = in.Likes
	existing.Comments = in.Comments
	existing.Shares = in.Shares
	existing.Saves = in.Saves
	existing.Reach = in.Reach
	existing.Cost = in.Cost

	if err := s.store.UpdateReport(ctx, existing); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if _, err := s.ranker.Recompute(ctx, existing.CampaignID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	updated, err := s.store.GetReport(ctx, id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": updated})
}

func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	ctx := r.Context()
	campaignID, err := s.store.DeleteReport(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if _, err := s.ranker.Recompute(ctx, campaignID); err != nil && !errors.Is(err, ranking.ErrNoReports) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func campaignIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("campaign_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "campaign_id is required"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
