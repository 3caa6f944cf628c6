package serve

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	neurochain "github.com/stellarzerolabs/neurochain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// authorized checks the configured API key against the X-API-Key header or
// a Bearer token. An empty configured key disables the check.
func (s *Server) authorized(r *http.Request) bool {
	expected := strings.TrimSpace(s.cfg.APIKey)
	if expected == "" {
		return true
	}
	if strings.TrimSpace(r.Header.Get("X-API-Key")) == expected {
		return true
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, prefix := range []string{"Bearer ", "bearer "} {
		if token, ok := strings.CutPrefix(auth, prefix); ok {
			return strings.TrimSpace(token) == expected
		}
	}
	return false
}

// injectModelLine prepends an AI statement when the request names a known
// model and the script has none of its own.
func (s *Server) injectModelLine(code, modelID string, logs *[]string) string {
	path, ok := neurochain.ResolveModelPath(s.cfg.ModelsDir, modelID)
	if !ok {
		if modelID != "" {
			*logs = append(*logs, fmt.Sprintf("warn: unknown model id '%s'", modelID))
		}
		return code
	}
	for _, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "AI:") {
			return code
		}
	}
	*logs = append(*logs, "auto: injected AI model path "+path)
	return fmt.Sprintf("AI: %q\n%s", path, code)
}

func (s *Server) saveRun(run Run) {
	run.RunID = uuid.New().String()[:8]
	run.CreatedAt = time.Now().UTC()
	if err := s.store.SaveRun(run); err != nil {
		slog.Error("save run", "error", err)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var logs []string

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{
			Output: "ERROR: invalid request body", Logs: logs,
		})
		return
	}
	if req.Model != "" {
		logs = append(logs, "model="+req.Model)
	}

	if !s.authorized(r) {
		logs = append(logs, "auth: missing or invalid API key")
		writeJSON(w, http.StatusUnauthorized, AnalyzeResponse{
			Output: "ERROR: missing or invalid API key", Logs: logs,
		})
		return
	}

	code := req.Code
	if code == "" {
		code = req.Content
	}
	if strings.TrimSpace(code) == "" {
		logs = append(logs, "warn: empty input")
		writeJSON(w, http.StatusOK, AnalyzeResponse{
			Output: "⚠️ Empty input", Logs: logs,
		})
		return
	}

	code = s.injectModelLine(code, req.Model, &logs)

	// Per-IP gate first. Without a reliable client address the per-IP
	// limit is skipped, so clients behind one proxy do not share a bucket.
	if ip, ok := clientIP(r); ok {
		release, ok := s.adm.AcquirePerIP(ip)
		if !ok {
			logs = append(logs, "busy: per-ip limit reached")
			writeJSON(w, http.StatusTooManyRequests, AnalyzeResponse{
				Output: "⚠️ Too many concurrent requests from your IP — please wait a moment and try again.",
				Logs:   logs,
			})
			return
		}
		defer release()
	}

	release, ok := s.adm.AcquireGlobal()
	if !ok {
		logs = append(logs, "busy: inference slots full")
		writeJSON(w, http.StatusServiceUnavailable, AnalyzeResponse{
			Output: "⚠️ Too many users right now — thank you for your patience.",
			Logs:   logs,
		})
		return
	}
	defer release()

	// Fresh interpreter per request: no variable leakage between callers.
	interp := neurochain.NewInterpreter(s.cfg)
	started := time.Now()
	out, err := neurochain.Analyze(r.Context(), code, interp)
	elapsed := time.Since(started)

	resp := AnalyzeResponse{OK: err == nil, Output: out, Logs: logs}
	if err != nil {
		resp.Output = "ERROR: " + err.Error()
	}
	s.saveRun(Run{
		Kind: "analyze", Model: req.Model, Input: code,
		Output: resp.Output, OK: resp.OK, DurationMS: elapsed.Milliseconds(),
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var logs []string

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{
			DSL: "# ERROR: invalid request body", Logs: logs,
		})
		return
	}
	if req.Model != "" {
		logs = append(logs, "model="+req.Model)
	}

	if !s.authorized(r) {
		logs = append(logs, "auth: missing or invalid API key")
		writeJSON(w, http.StatusUnauthorized, GenerateResponse{
			DSL: "# ERROR: missing or invalid API key", Logs: logs,
		})
		return
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = req.Content
	}
	if strings.TrimSpace(prompt) == "" {
		logs = append(logs, "warn: empty prompt")
		writeJSON(w, http.StatusOK, GenerateResponse{
			DSL: "# ERROR: empty prompt", Logs: logs,
		})
		return
	}

	release, ok := s.adm.AcquireGlobal()
	if !ok {
		logs = append(logs, "busy: inference slots full")
		writeJSON(w, http.StatusServiceUnavailable, GenerateResponse{
			DSL: "# ERROR: busy", Logs: logs,
		})
		return
	}
	defer release()

	interp := neurochain.NewInterpreter(s.cfg)
	started := time.Now()
	dsl := interp.Synthesize(r.Context(), neurochain.Preprocess(prompt))
	elapsed := time.Since(started)

	resp := GenerateResponse{OK: true, DSL: dsl, Logs: logs}
	s.saveRun(Run{
		Kind: "generate", Model: req.Model, Input: prompt,
		Output: dsl, OK: true, DurationMS: elapsed.Milliseconds(),
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid API key"})
		return
	}
	runs, err := s.store.RecentRuns(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	})
}
