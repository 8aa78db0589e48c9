package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/store"
)

const maxBodyBytes = 1 << 20

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Store         bool   `json:"store"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Store:         s.source != nil,
	})
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewLevelsResponse())
}

func (s *Server) handleSampleSize(w http.ResponseWriter, r *http.Request) {
	var req SampleSizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	in := stats.SampleSizeInput{
		BaselinePct:  *req.BaselinePct,
		MDEPct:       *req.MDEPct,
		Confidence:   s.opts.DefaultConfidence,
		Power:        s.opts.DefaultPower,
		VariantCount: 2,
	}
	if req.Confidence != nil {
		in.Confidence = stats.ConfidenceLevel(*req.Confidence)
	}
	if req.Power != nil {
		in.Power = stats.Power(*req.Power)
	}
	if req.Variants != nil {
		in.VariantCount = *req.Variants
	}
	s.warnFallback(r, in.Confidence, in.Power)

	res, err := stats.EstimateSampleSize(in)
	s.metrics.observe("sample_size", err)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewSampleSizeResponse(in, res))
}

func (s *Server) handleSignificance(w http.ResponseWriter, r *http.Request) {
	var req SignificanceRequest
	if !s.decode(w, r, &req) {
		return
	}

	confidence := s.opts.DefaultConfidence
	if req.Confidence != nil {
		confidence = stats.ConfidenceLevel(*req.Confidence)
	}

	variants := make([]stats.Variant, len(req.Variants))
	for i, v := range req.Variants {
		variants[i] = v.variant()
	}

	s.respondSignificance(w, r, variants, confidence)
}

func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, http.StatusNotFound, "no experiment store configured")
		return
	}

	experiments, err := s.source.ListExperiments(r.Context())
	if err != nil {
		s.logger.Error("failed to list experiments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list experiments")
		return
	}

	// Return empty array instead of null
	resp := make([]ExperimentResponse, 0, len(experiments))
	for _, e := range experiments {
		resp = append(resp, ExperimentResponse{
			Name:      e.Name,
			Variants:  e.Variants,
			CreatedAt: e.CreatedAt.Unix(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExperimentSignificance(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, http.StatusNotFound, "no experiment store configured")
		return
	}

	confidence := s.opts.DefaultConfidence
	if q := r.URL.Query().Get("confidence"); q != "" {
		c, err := stats.ParseConfidenceLevel(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		confidence = c
	}

	name := chi.URLParam(r, "name")
	variants, err := s.source.GetVariants(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "experiment not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load experiment", "experiment", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load experiment")
		return
	}

	s.respondSignificance(w, r, variants, confidence)
}

func (s *Server) respondSignificance(w http.ResponseWriter, r *http.Request, variants []stats.Variant, confidence stats.ConfidenceLevel) {
	if !confidence.Known() {
		s.logger.WarnContext(r.Context(), "confidence level not in table, CI uses default z", "confidence", int(confidence))
	}

	report, err := stats.Analyze(variants, confidence)
	s.metrics.observe("significance", err)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewSignificanceResponse(report))
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, describeValidation(err))
		return false
	}
	return true
}

func (s *Server) warnFallback(r *http.Request, c stats.ConfidenceLevel, p stats.Power) {
	if !c.Known() || !p.Known() {
		s.logger.WarnContext(r.Context(), "level not in z table, using default constant",
			"confidence", int(c), "power", int(p))
	}
}

func (s *Server) writeCalcError(w http.ResponseWriter, err error) {
	if errors.Is(err, stats.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("calculation failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
