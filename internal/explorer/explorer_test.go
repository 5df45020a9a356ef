package explorer

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/orizon-lang/rangeopt/internal/build"
	"github.com/orizon-lang/rangeopt/internal/cli"
	"github.com/orizon-lang/rangeopt/internal/codegen"
)

const countdown = `fun main() {
    for (i in 1..3) emit(i)
    for (j in 3 downTo 1 step 2) emit(j)
}
`

func newTestHandler() *Handler {
	return NewHandler(build.NewCache(4), cli.NewLogger(io.Discard, false, false), codegen.DefaultOptions(), 1000)
}

func post(t *testing.T, h http.Handler, req LowerRequest) (int, LowerResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/lower", bytes.NewReader(body)))

	var resp LowerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, resp
}

func TestLowerAndRun(t *testing.T) {
	code, resp := post(t, newTestHandler(), LowerRequest{Source: countdown, Run: true})
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", code, resp.Errors)
	}

	if got := strings.Join(resp.Trace, " "); got != "1 2 3 3 1" {
		t.Errorf("Unexpected trace %q", got)
	}
	if len(resp.Decisions) != 2 {
		t.Fatalf("Expected 2 decisions, got %+v", resp.Decisions)
	}
	if resp.Decisions[0].Strategy != "const-bounded" || resp.Decisions[1].Strategy != "generic" {
		t.Errorf("Unexpected strategies %+v", resp.Decisions)
	}
	if !strings.HasPrefix(resp.Decisions[0].Position, "main.kt:2:") {
		t.Errorf("Unexpected position %s", resp.Decisions[0].Position)
	}
	if !strings.Contains(resp.MIR, "func main") || resp.LIR == "" {
		t.Errorf("Expected MIR and LIR listings, got %q / %q", resp.MIR, resp.LIR)
	}
}

func TestLowerWithoutSpecialization(t *testing.T) {
	off := false
	code, resp := post(t, newTestHandler(), LowerRequest{Source: countdown, Specialize: &off, Run: true})
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", code, resp.Errors)
	}
	for _, d := range resp.Decisions {
		if d.Strategy != "generic" {
			t.Errorf("Expected every loop to be generic, got %+v", d)
		}
	}
	if got := strings.Join(resp.Trace, " "); got != "1 2 3 3 1" {
		t.Errorf("Unexpected trace %q", got)
	}
}

func TestLowerReportsDiagnostics(t *testing.T) {
	code, resp := post(t, newTestHandler(), LowerRequest{Source: "fun main( {"})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", code)
	}
	if len(resp.Errors) == 0 || resp.MIR != "" {
		t.Errorf("Expected only errors, got %+v", resp)
	}
}

func TestLowerReportsRuntimeErrors(t *testing.T) {
	src := "fun main() { for (i in 1..10 step 0) emit(i) }\n"
	code, resp := post(t, newTestHandler(), LowerRequest{Source: src, Run: true})
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if len(resp.Errors) != 1 || !strings.Contains(resp.Errors[0], "Step must be positive, was: 0") {
		t.Errorf("Unexpected errors %v", resp.Errors)
	}
}

func TestLowerRejectsBadRequests(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/lower", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/lower", strings.NewReader(`{"sauce": 1}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHealthzCountsCacheHits(t *testing.T) {
	h := newTestHandler()
	post(t, h, LowerRequest{Source: countdown})
	post(t, h, LowerRequest{Source: countdown})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body struct {
		Status string `json:"status"`
		Hits   int64  `json:"cache_hits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Hits != 1 {
		t.Errorf("Unexpected health %+v", body)
	}
}

func TestHTTP3Loopback(t *testing.T) {
	srvTLS, err := SelfSigned([]string{"localhost", "127.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s := NewServer("127.0.0.1:0", srvTLS, newTestHandler())
	addr, err := s.Start()
	if err != nil {
		t.Skip("http3 not supported here:", err)
	}
	defer s.Stop()

	c := Client(&tls.Config{InsecureSkipVerify: true, MinVersion: tls.VersionTLS13}, 2*time.Second)
	defer CloseClient(c)

	body, _ := json.Marshal(LowerRequest{Source: countdown, Run: true})
	resp, err := c.Post("https://"+addr+"/v1/lower", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Skip("http3 dial failed:", err)
	}
	defer resp.Body.Close()

	var out LowerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := strings.Join(out.Trace, " "); got != "1 2 3 3 1" {
		t.Errorf("Unexpected trace %q", got)
	}
}

func TestLoadTLSConfig(t *testing.T) {
	cfg, err := LoadTLSConfig("", "")
	if err != nil || len(cfg.Certificates) != 1 {
		t.Fatalf("Expected a generated certificate, got %v", err)
	}
	if _, err := LoadTLSConfig("missing.pem", "missing.key"); err == nil {
		t.Error("Expected an error for missing files")
	}
}
