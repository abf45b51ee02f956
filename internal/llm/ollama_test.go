package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaBackend_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if req.System != "extract calls" || req.Prompt != "TRANSCRIPT:\nhi" {
			t.Errorf("Unexpected prompt fields: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.1:8b",
			Response:        "[]",
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       2,
		})
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	resp, err := backend.Complete(context.Background(), Request{
		Model:        "llama3.1:8b",
		Instructions: "extract calls",
		Content:      "TRANSCRIPT:\nhi",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "[]" || resp.InputTokens != 10 || resp.OutputTokens != 2 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestOllamaBackend_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'llama3.1:8b' not found"}`))
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	_, err = backend.Complete(context.Background(), Request{Model: "llama3.1:8b"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOllamaBackend_Complete_NoModel(t *testing.T) {
	backend, err := NewOllamaBackend(Config{})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}
	if _, err := backend.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("Expected error for missing model")
	}
}
