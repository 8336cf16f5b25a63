package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/azatkul/docvault/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(config.OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		EmbedModel: "text-embedding-3-small",
		ChatModel:  "gpt-3.5-turbo",
		Timeout:    5 * time.Second,
	})
	return client, server
}

func TestEmbedParsesVector(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("missing bearer token, got %q", got)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "text-embedding-3-small" {
			t.Fatalf("unexpected model %v", req["model"])
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.25, -0.5, 0.75}}},
		})
	})

	vector, err := client.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vector) != 3 || vector[0] != 0.25 {
		t.Fatalf("unexpected vector: %v", vector)
	}
}

func TestEmbedSurfacesAPIErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := client.Embed(context.Background(), "text"); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}

func TestKeywordsParsesAndCapsList(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role":    "assistant",
					"content": ` "storage", encryption, quotas , 'search', golang, testing, http, extra-one, extra-two`,
				},
			}},
		})
	})

	keywords, err := client.Keywords(context.Background(), "doc text")
	if err != nil {
		t.Fatalf("Keywords returned error: %v", err)
	}
	if len(keywords) != 7 {
		t.Fatalf("expected cap at 7 keywords, got %d: %v", len(keywords), keywords)
	}
	if keywords[0] != "storage" || keywords[3] != "search" {
		t.Fatalf("quotes and whitespace should be stripped: %v", keywords)
	}
}

func TestSummarizeTrimsContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role":    "assistant",
					"content": "  A two sentence summary. It covers the gist.  ",
				},
			}},
		})
	})

	summary, err := client.Summarize(context.Background(), "doc text")
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary != "A two sentence summary. It covers the gist." {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestEmbedEmptyDataErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	if _, err := client.Embed(context.Background(), "text"); err == nil {
		t.Fatalf("expected error for empty data")
	}
}
