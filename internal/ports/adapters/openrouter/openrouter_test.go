package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forPelevin/autotube/internal/types"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantSub string
		wantErr bool
	}{
		{"raw", `{"shorts":[{"id":1,"start_text":"a","end_text":"b","title":"t","word_count":3}]}`, `"shorts"`, false},
		{"fenced", "```json\n{\"keywords\":[]}\n```", `"keywords"`, false},
		{"preface", "sure! {\"title\":\"x\"} thanks", `"title"`, false},
		{"empty", "   ", "", true},
		{"nojson", "hello", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(got, tt.wantSub) {
				t.Fatalf("got %q, want substring %q", got, tt.wantSub)
			}
		})
	}
}

func TestRedactSecrets(t *testing.T) {
	in := "401: Authorization: Bearer sk-or-abc123 api_key=sk-or-abc123 other"
	out := redactSecrets(in, "sk-or-abc123")
	if strings.Contains(out, "sk-or-abc123") {
		t.Fatalf("secret leaked: %q", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker: %q", out)
	}
	if redactSecrets("", "k") != "" {
		t.Fatalf("empty input should stay empty")
	}
}

func TestCleanList(t *testing.T) {
	got := cleanList([]string{" #AI ", "ai", "", "robots,", "space", "mars"}, 3)
	want := []string{"AI", "robots", "space"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("cleanList = %v, want %v", got, want)
	}
}

func TestTopUp_SkipsDuplicateStarts(t *testing.T) {
	picks := []types.ShortPick{{StartText: "By 2030 AI could"}}
	extra := []types.ShortPick{
		{StartText: "by 2030 ai could"},
		{StartText: "Quantum computers break"},
		{StartText: "Robots in surgery"},
	}
	got := topUp(picks, extra, 2)
	if len(got) != 2 || got[1].StartText != "Quantum computers break" {
		t.Fatalf("topUp = %+v", got)
	}
}

func sentence(word string, n int, end string) string {
	w := make([]string, n)
	for i := range w {
		w[i] = word
	}
	return strings.Join(w, " ") + end
}

// fakeLLM serves chat completions with a fixed assistant message.
func fakeLLM(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/v1/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth: %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key test-key","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPickShorts_TopsUpFromHeuristic(t *testing.T) {
	script := strings.Join([]string{
		sentence("dawn", 40, "."),
		"What if " + sentence("machines", 38, "?"),
		sentence("calm", 40, "."),
		sentence("quiet", 40, "."),
		"Imagine 90 percent " + sentence("robots", 37, "!"),
		sentence("dusk", 40, "."),
	}, " ")
	srv := fakeLLM(t, http.StatusOK, `{"shorts":[{"id":7,"start_text":" calm calm calm ","end_text":"quiet quiet.","title":"Calm","word_count":80},{"id":8,"start_text":"","end_text":"x","title":"","word_count":0}]}`)

	a := New("test-key", "test", srv.URL, Options{WordsPerSec: 2, MinShortSec: 30, MaxShortSec: 50})
	picks, err := a.PickShorts(context.Background(), script, 3)
	if err != nil {
		t.Fatalf("PickShorts: %v", err)
	}
	if len(picks) != 3 {
		t.Fatalf("expected 3 picks, got %d: %+v", len(picks), picks)
	}
	if picks[0].StartText != "calm calm calm" || picks[0].Title != "Calm" {
		t.Fatalf("model pick not first or not trimmed: %+v", picks[0])
	}
	for i, p := range picks {
		if p.ID != i+1 {
			t.Fatalf("pick %d has id %d", i, p.ID)
		}
	}
}

func TestPickShorts_BadContentFallsBack(t *testing.T) {
	script := strings.Join([]string{
		sentence("alpha", 40, "."),
		sentence("beta", 40, "."),
		sentence("gamma", 40, "."),
	}, " ")
	srv := fakeLLM(t, http.StatusOK, "I cannot help with that")

	a := New("test-key", "test", srv.URL, Options{WordsPerSec: 2, MinShortSec: 30, MaxShortSec: 50})
	picks, err := a.PickShorts(context.Background(), script, 1)
	if err != nil {
		t.Fatalf("PickShorts: %v", err)
	}
	if len(picks) != 1 || picks[0].StartText == "" {
		t.Fatalf("expected one heuristic pick, got %+v", picks)
	}
}

func TestPickShorts_TransportErrorRedacted(t *testing.T) {
	srv := fakeLLM(t, http.StatusUnauthorized, "")
	a := New("test-key", "test", srv.URL, Options{})
	_, err := a.PickShorts(context.Background(), "some words here.", 3)
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), "test-key") {
		t.Fatalf("api key leaked in error: %v", err)
	}
}

func TestWriteScript(t *testing.T) {
	srv := fakeLLM(t, http.StatusOK, "```json\n{\"title\":\"\",\"description\":\" d \",\"tags\":[\"#AI\",\"ai\"],\"script\":\"Robots are coming to your office sooner than you think.\"}\n```")
	a := New("test-key", "test", srv.URL, Options{})
	s, err := a.WriteScript(context.Background(), "robots")
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if s.Title != "Robots are coming to your office sooner than" {
		t.Fatalf("title fallback = %q", s.Title)
	}
	if s.Description != "d" || len(s.Tags) != 1 || s.Tags[0] != "AI" {
		t.Fatalf("unexpected script metadata: %+v", s)
	}
}

func TestKeywords_EmptyIsError(t *testing.T) {
	srv := fakeLLM(t, http.StatusOK, `{"keywords":[" ",""]}`)
	a := New("test-key", "test", srv.URL, Options{})
	if _, err := a.Keywords(context.Background(), "script"); err == nil {
		t.Fatalf("expected error for empty keyword list")
	}
}

func TestThumbnailPrompt(t *testing.T) {
	srv := fakeLLM(t, http.StatusOK, `{"prompt":"  A neon robot hand reaching for a glowing chip  "}`)
	a := New("test-key", "test", srv.URL, Options{})
	p, err := a.ThumbnailPrompt(context.Background(), "Robots", "Robots are here.")
	if err != nil {
		t.Fatalf("ThumbnailPrompt: %v", err)
	}
	if p != "A neon robot hand reaching for a glowing chip" {
		t.Fatalf("prompt = %q", p)
	}

	empty := fakeLLM(t, http.StatusOK, `{"prompt":" "}`)
	if _, err := New("test-key", "test", empty.URL, Options{}).ThumbnailPrompt(context.Background(), "t", "s"); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestBuildThumbnailPrompt_TruncatesScript(t *testing.T) {
	got := buildThumbnailPrompt("Title", strings.Repeat("ü", thumbnailScriptChars+50))
	if n := strings.Count(got, "ü"); n != thumbnailScriptChars {
		t.Fatalf("script excerpt has %d runes, want %d", n, thumbnailScriptChars)
	}
	if !strings.Contains(got, "Title: Title") || !strings.Contains(got, "NO text") {
		t.Fatalf("unexpected prompt:\n%s", got)
	}
}
