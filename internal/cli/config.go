package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/autotube/internal/pipeline"
	"github.com/forPelevin/autotube/internal/ports/adapters/youtube"
)

const (
	openRouterBaseURL = "https://openrouter.ai"
	openAIBaseURL     = "https://api.openai.com"
)

// addTuningFlags registers the knobs shared by run, shorts and schedule.
// Only the shorts count and subtitle burn-in are visible.
func addTuningFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("shorts", 3, "Number of shorts")
	f.Bool("burn-subtitles", true, "Burn subtitles into shorts")

	f.Int("min", 30, "Min short duration seconds")
	f.Int("max", 60, "Max short duration seconds")
	f.Int("words-per-cue", 5, "Words per subtitle cue")
	f.Float64("tolerance", 30, "Allowed audio/video drift seconds before stretching")
	f.String("timing", "proportional", "Short timing: proportional or rate")
	f.Int("clip-count", 18, "Footage clips in the long-form video")
	f.Float64("clip-sec", 30, "Seconds kept from each clip")
	f.Int("min-distinct", 1, "Fewest distinct clips accepted")
	for _, name := range []string{"min", "max", "words-per-cue", "tolerance", "timing", "clip-count", "clip-sec", "min-distinct"} {
		_ = f.MarkHidden(name)
	}
}

// configFromEnv builds the pipeline configuration from the environment and
// the tuning flags of cmd.
func configFromEnv(cmd *cobra.Command) (pipeline.Config, error) {
	cfg := pipeline.Defaults()
	f := cmd.Flags()

	cfg.ShortsN, _ = f.GetInt("shorts")
	cfg.BurnSubtitles, _ = f.GetBool("burn-subtitles")
	minSec, _ := f.GetInt("min")
	maxSec, _ := f.GetInt("max")
	cfg.MinShort = time.Duration(minSec) * time.Second
	cfg.MaxShort = time.Duration(maxSec) * time.Second
	cfg.WordsPerCue, _ = f.GetInt("words-per-cue")
	cfg.ToleranceSec, _ = f.GetFloat64("tolerance")
	cfg.Timing, _ = f.GetString("timing")
	cfg.ClipCount, _ = f.GetInt("clip-count")
	cfg.ClipSec, _ = f.GetFloat64("clip-sec")
	cfg.MinDistinct, _ = f.GetInt("min-distinct")
	cfg.TargetSec = float64(cfg.ClipCount) * cfg.ClipSec

	if v := os.Getenv("AUTOTUBE_WORDS_PER_SEC"); v != "" {
		wps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("AUTOTUBE_WORDS_PER_SEC: %w", err)
		}
		cfg.WordsPerSec = wps
	}
	if v := os.Getenv("AUTOTUBE_WORK_DIR"); v != "" {
		cfg.WorkDir = v
	}

	// OpenRouter is preferred; a bare OpenAI key talks to OpenAI directly.
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.OpenRouterBaseURL = getenvDefault("OPENROUTER_BASE_URL", openRouterBaseURL)
	cfg.OpenRouterModel = getenvDefault("OPENROUTER_MODEL", "openai/gpt-4o-mini")
	if cfg.OpenRouterAPIKey == "" {
		if k := os.Getenv("OPENAI_API_KEY"); k != "" {
			cfg.OpenRouterAPIKey = k
			cfg.OpenRouterBaseURL = getenvDefault("OPENROUTER_BASE_URL", openAIBaseURL)
			cfg.OpenRouterModel = getenvDefault("OPENROUTER_MODEL", "gpt-4o-mini")
		}
	}
	cfg.OpenRouterAllowedHosts = splitList(os.Getenv("OPENROUTER_ALLOWED_HOSTS"))

	// Thumbnails need OpenAI images; without a key the run skips them.
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.ImageModel = os.Getenv("AUTOTUBE_IMAGE_MODEL")

	cfg.PexelsAPIKey = os.Getenv("PEXELS_API_KEY")
	cfg.TTSVoice = os.Getenv("GOOGLE_TTS_VOICE")
	cfg.YouTube = youtube.Config{
		ClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		ClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		RefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
		Privacy:      os.Getenv("YOUTUBE_PRIVACY"),
		PlaylistID:   os.Getenv("YOUTUBE_PLAYLIST_ID"),
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
