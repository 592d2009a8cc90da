package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yamori/jmaobs/internal/config"
)

// newTestServer builds an API server whose portal endpoints point at a
// fixture portal.
func newTestServer(t *testing.T, portalHandler http.Handler) *Server {
	t.Helper()
	fake := httptest.NewServer(portalHandler)
	t.Cleanup(fake.Close)

	cfg := &config.Config{
		Portal: config.PortalConfig{
			TableViewURL:     fake.URL + "/view",
			StationURL:       fake.URL + "/station",
			ElementURL:       fake.URL + "/element",
			CSVTableURL:      fake.URL + "/table",
			DownloadIndexURL: fake.URL + "/index.php",
			TimeoutSec:       5,
		},
		API: config.APIConfig{Host: "127.0.0.1", Port: 0},
	}
	return NewServer(cfg)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestPrefecturesEndpoint(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body>
<div class="prefecture"><input type="hidden" name="prid" value="44">東京都</div>
</body></html>`)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/prefectures", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["44"] != "東京都" {
		t.Errorf("prefecture 44 = %q, want 東京都", body["44"])
	}
}

func TestStationsEndpointBadID(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations/abc", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestElementsEndpointRequiresPeriod(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elements", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDailyEndpointValidation(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/daily?prec_no=44", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDailyEndpointMissingTable(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/daily?prec_no=44&block_no=47662&date=2023-01-15", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestDownloadEndpointValidation(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	body := strings.NewReader(`{"period":1,"station":"","elements":[],"begin":"2023-01-01","end":"2023-01-31"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/download", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
