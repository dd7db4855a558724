package transcription

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"auto-transcriber-go/internal/config"
)

type captured struct {
	path, query, auth, apiKey string
	model, format, fileName   string
	fileBody                  string
}

func newServer(t *testing.T, status int, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		got.apiKey = r.Header.Get("api-key")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		} else {
			got.model = r.FormValue("model")
			got.format = r.FormValue("response_format")
			if f, hdr, err := r.FormFile("file"); err == nil {
				data, _ := io.ReadAll(f)
				got.fileName = hdr.Filename
				got.fileBody = string(data)
				f.Close()
			}
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeChunk(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk-000.m4a")
	if err := os.WriteFile(path, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenAITranscribe(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"text":"hello world"}`, &got)
	client, err := New(config.Resolved{
		Provider: config.ProviderOpenAI,
		Model:    "whisper-1",
		APIKey:   "sk-test",
		BaseURL:  srv.URL + "/v1/",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := client.Transcribe(context.Background(), writeChunk(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("text = %q", text)
	}
	if got.path != "/v1/audio/transcriptions" || got.auth != "Bearer sk-test" || got.apiKey != "" {
		t.Fatalf("unexpected request %#v", got)
	}
	if got.model != "whisper-1" || got.format != "json" || got.fileName != "talk-000.m4a" || got.fileBody != "audio-bytes" {
		t.Fatalf("unexpected form %#v", got)
	}
}

func TestAzureTranscribe(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"text":"bonjour"}`, &got)
	client, err := New(config.Resolved{
		Provider:   config.ProviderAzure,
		Model:      "whisper-deploy",
		APIKey:     "az-key",
		Endpoint:   srv.URL,
		APIVersion: "2024-06-01",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := client.Transcribe(context.Background(), writeChunk(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "bonjour" {
		t.Fatalf("text = %q", text)
	}
	if got.path != "/openai/deployments/whisper-deploy/audio/transcriptions" || got.query != "api-version=2024-06-01" {
		t.Fatalf("unexpected url %s?%s", got.path, got.query)
	}
	if got.apiKey != "az-key" || got.auth != "" {
		t.Fatalf("unexpected credentials %#v", got)
	}
}

func TestTranscribeAPIError(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, &got)
	client, err := New(config.Resolved{Provider: config.ProviderOpenAI, Model: "whisper-1", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Transcribe(context.Background(), writeChunk(t))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Provider != config.ProviderOpenAI {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
	if !errors.Is(err, ErrTranscription) {
		t.Fatal("APIError should match ErrTranscription")
	}
}

func TestTranscribeMissingChunk(t *testing.T) {
	client, err := New(config.Resolved{Provider: config.ProviderOpenAI, Model: "m", APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.m4a")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(config.Resolved{Provider: "google"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := New(config.Resolved{Provider: config.ProviderAzure, Model: "m", APIKey: "k"}); err == nil {
		t.Fatal("expected error for azure without endpoint")
	}
}
