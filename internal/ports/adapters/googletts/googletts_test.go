package googletts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunks(t *testing.T) {
	got := Chunks("One two.  Three four.\nFive.", 12)
	want := []string{"One two.", "Three four.", "Five."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Chunks = %q, want %q", got, want)
	}

	long := strings.Repeat("word ", 50) + "end."
	for _, c := range Chunks(long, 40) {
		if len(c) > 40 {
			t.Fatalf("chunk of %d bytes exceeds limit", len(c))
		}
	}
	if strings.Join(Chunks(long, 40), " ") != strings.TrimSpace(long) {
		t.Fatalf("chunks do not reassemble the text")
	}
	if Chunks("   ", 10) != nil {
		t.Fatalf("expected no chunks for blank text")
	}
}

func TestChunks_SplitsOversizedToken(t *testing.T) {
	token := strings.Repeat("é", 30) // 60 bytes, no whitespace
	got := Chunks("Start. "+token+" end.", 25)
	if len(got) < 3 {
		t.Fatalf("expected the token to be split, got %q", got)
	}
	var joined strings.Builder
	for _, c := range got {
		if len(c) > 25 {
			t.Fatalf("chunk of %d bytes exceeds limit: %q", len(c), c)
		}
		if !utf8.ValidString(c) {
			t.Fatalf("chunk split inside a rune: %q", c)
		}
		joined.WriteString(strings.ReplaceAll(c, " ", ""))
	}
	if joined.String() != "Start."+token+"end." {
		t.Fatalf("chunks lost text: %q", got)
	}
}

func TestSynthesize_JoinsChunks(t *testing.T) {
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.AudioConfig.AudioEncoding != "MP3" || req.Voice.Name != "en-US-Neural2-J" {
			t.Errorf("unexpected request config: %+v", req)
		}
		texts = append(texts, req.Input.Text)
		_ = json.NewEncoder(w).Encode(synthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("[" + req.Input.Text + "]")),
		})
	}))
	defer srv.Close()

	c := NewWithHTTP(srv.Client(), srv.URL, DefaultVoice(), nil)
	out := filepath.Join(t.TempDir(), "audio.mp3")
	text := strings.Repeat("Robots are here. ", 400)
	if err := c.Synthesize(context.Background(), text, out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(texts) < 2 {
		t.Fatalf("expected chunked requests, got %d", len(texts))
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "[Robots are here.") || strings.Count(string(b), "[") != len(texts) {
		t.Fatalf("unexpected audio payload prefix %q", string(b[:40]))
	}
}

func TestSynthesize_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "audio.mp3")
	err := NewWithHTTP(srv.Client(), srv.URL, Voice{}, nil).Synthesize(context.Background(), "Hello.", out)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("no audio should be written on failure")
	}
}
