package classifier

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestKindFromPath(t *testing.T) {
	cases := []struct {
		path string
		want Kind
	}{
		{"models/distilbert-sst2/model.onnx", Sentiment},
		{"models/toxic_quantized/model.onnx", Toxicity},
		{"models/factcheck/model.onnx", FactCheck},
		{"models/intent/model.onnx", Intent},
		{"models/intent_macro/model.onnx", MacroIntent},
		{"models/whatever/model.onnx", Unknown},
	}
	for _, c := range cases {
		if got := KindFromPath(c.path); got != c.want {
			t.Errorf("KindFromPath(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Sentiment:   "sentiment",
		Toxicity:    "toxicity",
		FactCheck:   "factcheck",
		Intent:      "intent",
		MacroIntent: "macro-intent",
		Unknown:     "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestLabels(t *testing.T) {
	if got := Sentiment.Labels(); len(got) != 2 || got[1] != "Positive" {
		t.Errorf("Sentiment.Labels() = %v, want [Negative Positive]", got)
	}
	if got := FactCheck.Labels(); len(got) != 3 || got[0] != "entailment" {
		t.Errorf("FactCheck.Labels() = %v, want entailment first", got)
	}
	if got := MacroIntent.Labels(); len(got) != 9 || got[0] != "Loop" {
		t.Errorf("MacroIntent.Labels() = %v, want 9 labels starting with Loop", got)
	}
	if got := Unknown.Labels(); len(got) != 1 || got[0] != "unknown" {
		t.Errorf("Unknown.Labels() = %v, want [unknown]", got)
	}
}

func TestArgmaxWithProb(t *testing.T) {
	idx, prob := argmaxWithProb([]float32{1, 3, 2})
	if idx != 1 {
		t.Errorf("argmax index = %d, want 1", idx)
	}
	// softmax([1 3 2])[1] = 1 / (e^-2 + 1 + e^-1)
	want := 1 / (math.Exp(-2) + 1 + math.Exp(-1))
	if math.Abs(float64(prob)-want) > 1e-6 {
		t.Errorf("argmax prob = %v, want %v", prob, want)
	}
}

func TestArgmaxWithProbEmpty(t *testing.T) {
	idx, prob := argmaxWithProb(nil)
	if idx != 0 || prob != 0 {
		t.Errorf("argmaxWithProb(nil) = %d, %v; want 0, 0", idx, prob)
	}
}

func TestArgmaxWithProbSingle(t *testing.T) {
	idx, prob := argmaxWithProb([]float32{4.2})
	if idx != 0 || prob != 1 {
		t.Errorf("argmaxWithProb(one logit) = %d, %v; want 0, 1", idx, prob)
	}
}

func writeModel(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope", "model.onnx"))
	if err == nil {
		t.Fatal("Load() expected error for missing model file")
	}
}

func TestLoadSetsKind(t *testing.T) {
	path := writeModel(t, filepath.Join("intent_macro", "model.onnx"))
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Kind() != MacroIntent {
		t.Errorf("Kind() = %v, want MacroIntent", c.Kind())
	}
	if !c.IsMacroModel() {
		t.Error("IsMacroModel() = false, want true")
	}
	if c.Path() != path {
		t.Errorf("Path() = %q, want %q", c.Path(), path)
	}
}

func TestPredictWithScore(t *testing.T) {
	var gotReq inferRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/logits" {
			t.Errorf("request path = %q, want /v1/logits", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(inferResponse{Logits: []float32{-1, 2}})
	}))
	defer srv.Close()

	path := writeModel(t, filepath.Join("distilbert-sst2", "model.onnx"))
	c, err := Load(path, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	label, score, err := c.PredictWithScore(context.Background(), "I love this!")
	if err != nil {
		t.Fatalf("PredictWithScore() error = %v", err)
	}
	if label != "Positive" {
		t.Errorf("label = %q, want Positive", label)
	}
	if score <= 0.5 || score > 1 {
		t.Errorf("score = %v, want a probability above 0.5", score)
	}
	if gotReq.Model != path || gotReq.Text != "I love this!" {
		t.Errorf("request = %+v, want model path and text echoed", gotReq)
	}
}

func TestPredictServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inferResponse{Error: "model exploded"})
	}))
	defer srv.Close()

	path := writeModel(t, filepath.Join("intent", "model.onnx"))
	c, err := Load(path, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := c.Predict(context.Background(), "go left"); err == nil {
		t.Error("Predict() expected error when the service reports one")
	}
}

func TestPredictHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := writeModel(t, filepath.Join("toxic_quantized", "model.onnx"))
	c, err := Load(path, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := c.Predict(context.Background(), "whatever"); err == nil {
		t.Error("Predict() expected error on HTTP 500")
	}
}

func TestPredictOutOfRangeLogits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inferResponse{Logits: []float32{0, 0, 0, 9}})
	}))
	defer srv.Close()

	path := writeModel(t, filepath.Join("distilbert-sst2", "model.onnx"))
	c, err := Load(path, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	label, err := c.Predict(context.Background(), "hm")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if label != "unknown" {
		t.Errorf("label = %q, want unknown when logits outnumber labels", label)
	}
}
