package serve

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	neurochain "github.com/stellarzerolabs/neurochain"
)

func newTestServer(t *testing.T, mutate func(*neurochain.Config)) *Server {
	t.Helper()
	cfg := neurochain.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "runs.db")
	cfg.MacroModelPath = filepath.Join(t.TempDir(), "absent.onnx")
	if mutate != nil {
		mutate(&cfg)
	}

	s := New(cfg)
	s.startedAt = time.Now()

	store, err := NewSQLiteStore(cfg.DBPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	s.store = store
	return s
}

func postAnalyze(t *testing.T, s *Server, body string, hdr map[string]string) (*httptest.ResponseRecorder, AnalyzeResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.handleAnalyze(w, req)

	var resp AnalyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestAnalyzeRunsScript(t *testing.T) {
	s := newTestServer(t, nil)
	w, resp := postAnalyze(t, s, `{"code":"set x = 2 + 3\nneuro x"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !resp.OK || resp.Output != "5" {
		t.Errorf("response = %+v, want ok with output 5", resp)
	}
}

func TestAnalyzeContentFallback(t *testing.T) {
	s := newTestServer(t, nil)
	_, resp := postAnalyze(t, s, `{"content":"neuro \"hi\""}`, nil)
	if resp.Output != "hi" {
		t.Errorf("output = %q, want hi", resp.Output)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	s := newTestServer(t, nil)
	w, resp := postAnalyze(t, s, `{"code":"   "}`, nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 even for empty input", w.Code)
	}
	if resp.OK || resp.Output != "⚠️ Empty input" {
		t.Errorf("response = %+v, want not-ok empty-input marker", resp)
	}
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	s := newTestServer(t, func(c *neurochain.Config) { c.APIKey = "sekret" })

	w, _ := postAnalyze(t, s, `{"code":"neuro \"hi\""}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want 401", w.Code)
	}

	w, resp := postAnalyze(t, s, `{"code":"neuro \"hi\""}`, map[string]string{"X-API-Key": "sekret"})
	if w.Code != http.StatusOK || resp.Output != "hi" {
		t.Errorf("status with X-API-Key = %d (%+v), want 200", w.Code, resp)
	}

	w, _ = postAnalyze(t, s, `{"code":"neuro \"hi\""}`, map[string]string{"Authorization": "Bearer sekret"})
	if w.Code != http.StatusOK {
		t.Errorf("status with bearer token = %d, want 200", w.Code)
	}

	w, _ = postAnalyze(t, s, `{"code":"neuro \"hi\""}`, map[string]string{"Authorization": "bearer sekret"})
	if w.Code != http.StatusOK {
		t.Errorf("status with lowercase bearer = %d, want 200", w.Code)
	}

	w, _ = postAnalyze(t, s, `{"code":"neuro \"hi\""}`, map[string]string{"Authorization": "Bearer wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status with wrong token = %d, want 401", w.Code)
	}
}

func TestAnalyzeInjectsModelLine(t *testing.T) {
	s := newTestServer(t, nil)
	var logs []string
	code := s.injectModelLine(`neuro "hi"`, "sst2", &logs)
	if !strings.HasPrefix(code, `AI: "models/distilbert-sst2/model.onnx"`) {
		t.Errorf("injected code = %q, want AI line first", code)
	}
	if len(logs) != 1 || !strings.Contains(logs[0], "auto: injected AI model path") {
		t.Errorf("logs = %v, want the injection note", logs)
	}
}

func TestInjectModelLineSkipsExistingAI(t *testing.T) {
	s := newTestServer(t, nil)
	var logs []string
	src := "AI: \"models/custom/model.onnx\"\nneuro \"hi\""
	code := s.injectModelLine(src, "sst2", &logs)
	if code != src {
		t.Errorf("code = %q, want unchanged when an AI line exists", code)
	}
	if len(logs) != 0 {
		t.Errorf("logs = %v, want none", logs)
	}
}

func TestInjectModelLineUnknownID(t *testing.T) {
	s := newTestServer(t, nil)
	var logs []string
	code := s.injectModelLine(`neuro "hi"`, "nope", &logs)
	if code != `neuro "hi"` {
		t.Errorf("code = %q, want unchanged for unknown id", code)
	}
	if len(logs) != 1 || !strings.Contains(logs[0], "unknown model id 'nope'") {
		t.Errorf("logs = %v, want the unknown-id warning", logs)
	}
}

func TestAnalyzePerIPLimit(t *testing.T) {
	s := newTestServer(t, func(c *neurochain.Config) { c.MaxInfer = 4; c.MaxInferPerIP = 1 })

	release, ok := s.adm.AcquirePerIP("203.0.113.5")
	if !ok {
		t.Fatal("first per-ip slot should be free")
	}
	defer release()

	w, resp := postAnalyze(t, s, `{"code":"neuro \"hi\""}`,
		map[string]string{"X-Forwarded-For": "203.0.113.5"})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if !strings.Contains(resp.Output, "Too many concurrent requests from your IP") {
		t.Errorf("output = %q, want the per-ip busy message", resp.Output)
	}
}

func TestAnalyzeGlobalLimit(t *testing.T) {
	s := newTestServer(t, func(c *neurochain.Config) { c.MaxInfer = 1; c.MaxInferPerIP = 1 })

	release, ok := s.adm.AcquireGlobal()
	if !ok {
		t.Fatal("first global slot should be free")
	}
	defer release()

	w, resp := postAnalyze(t, s, `{"code":"neuro \"hi\""}`, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(resp.Output, "Too many users right now") {
		t.Errorf("output = %q, want the global busy message", resp.Output)
	}
}

func TestGenerateReturnsDSL(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"prompt":"repeat hello 3 times"}`))
	w := httptest.NewRecorder()
	s.handleGenerate(w, req)

	var resp GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.OK {
		t.Fatalf("response = %+v, want ok", resp)
	}
	if strings.Count(resp.DSL, "neuro \"hello\"") != 3 {
		t.Errorf("dsl = %q, want three print lines", resp.DSL)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":""}`))
	w := httptest.NewRecorder()
	s.handleGenerate(w, req)

	var resp GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if w.Code != http.StatusOK || resp.OK || !strings.Contains(resp.DSL, "empty prompt") {
		t.Errorf("response = %d %+v, want 200 with empty-prompt error", w.Code, resp)
	}
}

func TestRunsEndpointListsHistory(t *testing.T) {
	s := newTestServer(t, nil)
	postAnalyze(t, s, `{"code":"neuro \"one\""}`, nil)
	postAnalyze(t, s, `{"code":"neuro \"two\""}`, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	w := httptest.NewRecorder()
	s.handleRuns(w, req)

	var runs []Run
	if err := json.Unmarshal(w.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decoding runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	for _, r := range runs {
		if r.Kind != "analyze" || len(r.RunID) != 8 {
			t.Errorf("run = %+v, want analyze kind and 8-char run id", r)
		}
	}
}

func TestRunsEndpointEmptyHistory(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	w := httptest.NewRecorder()
	s.handleRuns(w, req)
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("empty history body = %q, want []", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight should not reach the inner handler")
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}
