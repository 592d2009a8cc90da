package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient starts a fixture server and returns a client with
// every endpoint pointed at it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Endpoints{
		TableView:     srv.URL + "/view/daily_s1.php",
		Station:       srv.URL + "/top/station",
		Element:       srv.URL + "/top/element",
		CSVTable:      srv.URL + "/show/table",
		DownloadIndex: srv.URL + "/index.php",
	})
}

func TestErrHTTPError(t *testing.T) {
	e := &ErrHTTP{StatusCode: 404, Status: "404 Not Found", Body: "page not found"}
	if e.Error() != "HTTP 404 404 Not Found: page not found" {
		t.Fatalf("unexpected error message: %s", e.Error())
	}
}

func TestClientSurfacesHTTPErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))

	_, err := client.Prefectures(context.Background())
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
}
