package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yamori/jmaobs/internal/portal"
)

// writeJSON encodes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing more to do.
		return
	}
}

// writeError encodes an error response, mapping portal faults to
// status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var httpErr *portal.ErrHTTP
	switch {
	case errors.As(err, &httpErr):
		status = http.StatusBadGateway
	case errors.Is(err, portal.ErrMissingElement):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePrefectures(w http.ResponseWriter, r *http.Request) {
	prefectures, err := s.portal.Prefectures(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefectures)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	prefID, err := strconv.Atoi(chi.URLParam(r, "prefID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prefID must be an integer"})
		return
	}
	stations, err := s.portal.Stations(r.Context(), prefID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.portal.AggregationPeriods(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.Atoi(r.URL.Query().Get("period"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be an integer"})
		return
	}
	kind := portal.MeteorologicalElements
	if k := r.URL.Query().Get("kind"); k != "" {
		n, err := strconv.Atoi(k)
		if err != nil || (n != 0 && n != 1) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be 0 or 1"})
			return
		}
		kind = portal.ElementKind(n)
	}

	elements, err := s.portal.Elements(r.Context(), periodID, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elements)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	precNo, err1 := strconv.Atoi(q.Get("prec_no"))
	blockNo, err2 := strconv.Atoi(q.Get("block_no"))
	day, err3 := time.Parse("2006-01-02", q.Get("date"))
	if err1 != nil || err2 != nil || err3 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "prec_no, block_no and date=YYYY-MM-DD are required",
		})
		return
	}

	table, err := s.portal.DailyTable(r.Context(), precNo, blockNo, day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// downloadRequest is the JSON body of POST /api/v1/download. When
// session_id is empty the server acquires a fresh one from the portal.
type downloadRequest struct {
	SessionID string `json:"session_id"`
	Period    int    `json:"period"`
	Station   string `json:"station"`
	Elements  []int  `json:"elements"`
	Begin     string `json:"begin"` // YYYY-MM-DD
	End       string `json:"end"`   // YYYY-MM-DD
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	begin, err1 := time.Parse("2006-01-02", req.Begin)
	end, err2 := time.Parse("2006-01-02", req.End)
	if err1 != nil || err2 != nil || req.Station == "" || len(req.Elements) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "station, elements, begin and end (YYYY-MM-DD) are required",
		})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sid, err := s.portal.SessionID(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		sessionID = sid
	}

	table, err := s.portal.DownloadCSV(r.Context(), portal.DownloadRequest{
		SessionID:         sessionID,
		AggregationPeriod: req.Period,
		Station:           req.Station,
		Elements:          req.Elements,
		Begin:             begin,
		End:               end,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
