package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/dashboard"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/mapview"
)

type ctxKey int

const (
	dashboardKey ctxKey = iota
	sessionKey
)

const maxBodyBytes = 1 << 16

func (s *Server) requireDashboard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, ok := s.holder.Get()
		if !ok {
			msg := "datasets are still loading"
			if err := s.holder.CheckReadiness(r.Context()); err != nil {
				msg = err.Error()
			}
			writeError(w, http.StatusServiceUnavailable, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), dashboardKey, d)))
	})
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func dashboardFrom(r *http.Request) *dashboard.Dashboard {
	return r.Context().Value(dashboardKey).(*dashboard.Dashboard)
}

func sessionFrom(r *http.Request) *dashboard.Session {
	return r.Context().Value(sessionKey).(*dashboard.Session)
}

// statusFor maps session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRegionNotFound), errors.Is(err, domain.ErrFireNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoRegionSelected):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// respond writes the session view, or the mapped error alongside it so the
// client can still redraw after a rejected interaction.
func respond(w http.ResponseWriter, sess *dashboard.Session, err error) {
	if err != nil {
		writeJSON(w, statusFor(err), struct {
			Error string         `json:"error"`
			View  dashboard.View `json:"view"`
		}{err.Error(), sess.View()})
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dashboardFrom(r).Search(r.Context(), r.URL.Query().Get("q")))
}

func (s *Server) handleSessionSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Search(r.Context(), r.URL.Query().Get("q")))
}

func (s *Server) handleFires(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	writeJSON(w, http.StatusOK, dashboardFrom(r).Fires(year))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(dashboardFrom(r))
	s.logger.InfoContext(r.Context(), "session created", "session", sess.ID(), "active", s.sessions.Len())
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID()})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(sessionFrom(r).ID())
	w.WriteHeader(http.StatusNoContent)
}

type selectRequest struct {
	Kind domain.RegionKind `json:"kind"`
	Name string            `json:"name"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Kind.IsRegion() || req.Name == "" {
		writeError(w, http.StatusBadRequest, "kind must be county or city and name is required")
		return
	}
	sess := sessionFrom(r)
	respond(w, sess, sess.SelectRegion(r.Context(), req.Kind, req.Name))
}

func (s *Server) handleSelectFire(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	respond(w, sess, sess.SelectFire(r.Context(), chi.URLParam(r, "fireID")))
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year int `json:"year"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	respond(w, sess, sess.SetYear(r.Context(), req.Year))
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	mode, err := domain.ParseChartMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFrom(r)
	respond(w, sess, sess.SetMode(r.Context(), mode))
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var t mapview.Transform
	if !decodeBody(w, r, &t) {
		return
	}
	if t.K <= 0 {
		writeError(w, http.StatusBadRequest, "k must be positive")
		return
	}
	writeJSON(w, http.StatusOK, sessionFrom(r).Zoom(t))
}

type pointerResponse struct {
	Focused bool          `json:"focused"`
	Point   *domain.Point `json:"point,omitempty"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	if req.X < 0 {
		sess.PointerLeave()
		writeJSON(w, http.StatusOK, pointerResponse{})
		return
	}
	p, ok := sess.PointerMove(req.X)
	if !ok {
		writeJSON(w, http.StatusOK, pointerResponse{})
		return
	}
	writeJSON(w, http.StatusOK, pointerResponse{Focused: true, Point: &p})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Clear(r.Context())
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format := chart.FormatSVG
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := chart.ParseFormat(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	var buf bytes.Buffer
	if err := sessionFrom(r).Chart(&buf, format); err != nil {
		s.logger.ErrorContext(r.Context(), "chart render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chart render failed")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
