package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCuesCommand(t *testing.T) {
	script := filepath.Join(t.TempDir(), "script.txt")
	words := make([]string, 55)
	for i := range words {
		words[i] = "w"
	}
	if err := os.WriteFile(script, []byte(strings.Join(words, " ")), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "cues", script, "--duration", "44", "--words", "5")
	if err != nil {
		t.Fatalf("cues: %v", err)
	}
	if !strings.Contains(out, "11\n00:00:40,000 --> 00:00:44,000\n") {
		t.Fatalf("unexpected last cue:\n%s", out)
	}

	if _, err := execute(t, "cues", script); err == nil {
		t.Fatalf("expected error for missing duration")
	}
	if _, err := execute(t, "cues"); err == nil || !strings.Contains(err.Error(), "accepts 1 arg(s), received 0") {
		t.Fatalf("expected arg count error, got %v", err)
	}
}

func TestCuesCommand_ASSToFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.txt")
	if err := os.WriteFile(script, []byte("one two three four five six"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "short.ass")
	stdout, err := execute(t, "cues", script, "--duration", "6", "--words", "3", "--ass", "--out", out)
	if err != nil {
		t.Fatalf("cues --ass: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(b)
	if !strings.HasPrefix(doc, "[Script Info]") || strings.Count(doc, "Dialogue: ") != 2 {
		t.Fatalf("unexpected ASS document:\n%s", doc)
	}
	if strings.Contains(doc, "-->") {
		t.Fatalf("ASS output contains SubRip timing:\n%s", doc)
	}
}

func TestPlanCommand(t *testing.T) {
	list := filepath.Join(t.TempDir(), "videos.json")
	body := `[{"url":"https://v/a","duration":40,"width":1920,"height":1080},{"url":"https://v/b","duration":20,"width":1920,"height":1080}]`
	if err := os.WriteFile(list, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "plan", "--videos", list, "--count", "3")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if strings.Count(out, `"path"`) != 3 || !strings.Contains(out, `"repeated": 1`) {
		t.Fatalf("unexpected plan output:\n%s", out)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_BASE_URL", "")
	t.Setenv("OPENROUTER_MODEL", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENROUTER_ALLOWED_HOSTS", " api.openai.com , ")
	t.Setenv("AUTOTUBE_WORDS_PER_SEC", "2.2")
	t.Setenv("PEXELS_API_KEY", "p")

	cmd := &cobra.Command{}
	addTuningFlags(cmd)
	if err := cmd.Flags().Parse([]string{"--min", "20", "--shorts", "2"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := configFromEnv(cmd)
	if err != nil {
		t.Fatalf("configFromEnv: %v", err)
	}
	if cfg.OpenRouterAPIKey != "sk-test" || cfg.OpenRouterBaseURL != openAIBaseURL || cfg.OpenRouterModel != "gpt-4o-mini" {
		t.Fatalf("expected OpenAI fallback, got key=%q base=%q model=%q", cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Fatalf("thumbnail key not read: %q", cfg.OpenAIAPIKey)
	}
	if len(cfg.OpenRouterAllowedHosts) != 1 || cfg.WordsPerSec != 2.2 {
		t.Fatalf("unexpected env parsing: %+v", cfg)
	}
	if cfg.MinShort != 20*time.Second || cfg.ShortsN != 2 || cfg.TargetSec != 540 {
		t.Fatalf("unexpected flag parsing: min=%s shorts=%d target=%v", cfg.MinShort, cfg.ShortsN, cfg.TargetSec)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	t.Setenv("AUTOTUBE_WORDS_PER_SEC", "fast")
	if _, err := configFromEnv(cmd); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRunCommand_ValidatesConfig(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := execute(t, "run"); err == nil || !strings.Contains(err.Error(), "LLM API key is required") {
		t.Fatalf("expected missing key error, got %v", err)
	}

	t.Setenv("OPENROUTER_API_KEY", "k")
	t.Setenv("PEXELS_API_KEY", "p")
	t.Setenv("OPENROUTER_BASE_URL", "http://openrouter.ai")
	if _, err := execute(t, "run"); err == nil || !strings.Contains(err.Error(), "https is required") {
		t.Fatalf("expected base url error, got %v", err)
	}
}

func TestScheduleCommand_RejectsBadCron(t *testing.T) {
	if _, err := execute(t, "schedule", "--cron", "every day"); err == nil || !strings.Contains(err.Error(), "invalid --cron") {
		t.Fatalf("expected cron error, got %v", err)
	}
}
