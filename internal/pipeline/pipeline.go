package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forPelevin/autotube/internal/artifact"
	"github.com/forPelevin/autotube/internal/domain/inventory"
	"github.com/forPelevin/autotube/internal/domain/reconcile"
	"github.com/forPelevin/autotube/internal/domain/shorts"
	"github.com/forPelevin/autotube/internal/domain/subtitles"
	"github.com/forPelevin/autotube/internal/domain/timing"
	"github.com/forPelevin/autotube/internal/ports"
	"github.com/forPelevin/autotube/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/autotube/internal/ports/adapters/googletts"
	"github.com/forPelevin/autotube/internal/ports/adapters/httpfetch"
	"github.com/forPelevin/autotube/internal/ports/adapters/imagegen"
	"github.com/forPelevin/autotube/internal/ports/adapters/openrouter"
	"github.com/forPelevin/autotube/internal/ports/adapters/pexels"
	"github.com/forPelevin/autotube/internal/ports/adapters/youtube"
	"github.com/forPelevin/autotube/internal/retry"
	"github.com/forPelevin/autotube/internal/types"
	"github.com/forPelevin/autotube/internal/usecase"
)

const thumbnailMinBytes = 10 * 1024

type Config struct {
	Topic      string
	WorkDir    string
	Upload     bool
	SkipShorts bool
	Logf       func(format string, args ...any)
	// Logger feeds the adapters. Nil disables adapter logging.
	Logger *zap.Logger

	WordsPerSec   float64
	WordsPerCue   int
	ToleranceSec  float64
	MinShort      time.Duration
	MaxShort      time.Duration
	ShortsN       int
	Timing        string
	BurnSubtitles bool

	ClipCount    int
	ClipSec      float64
	TargetSec    float64
	MinDistinct  int
	FootageLimit int
	MinWidth     int
	MinFootage   float64

	FetchAttempts int
	FetchBackoff  time.Duration

	FFmpegPath  string
	FFprobePath string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	// OpenAIAPIKey enables thumbnail generation. Empty skips it.
	OpenAIAPIKey string
	ImageModel   string

	PexelsAPIKey string
	TTSVoice     string
	YouTube      youtube.Config
}

// Defaults returns the configuration of a standard nine minute run: 18
// clips of 30s, three shorts of 30-60s.
func Defaults() Config {
	fetch := retry.Default()
	return Config{
		WorkDir:       ".autotube",
		WordsPerSec:   timing.DefaultWordsPerSecond,
		WordsPerCue:   subtitles.DefaultWordsPerCue,
		ToleranceSec:  reconcile.DefaultToleranceSec,
		MinShort:      30 * time.Second,
		MaxShort:      60 * time.Second,
		ShortsN:       3,
		Timing:        usecase.TimingProportional,
		BurnSubtitles: true,
		ClipCount:     18,
		ClipSec:       30,
		TargetSec:     540,
		MinDistinct:   1,
		FootageLimit:  16,
		MinWidth:      1920,
		MinFootage:    10,
		FetchAttempts: fetch.MaxAttempts,
		FetchBackoff:  fetch.Backoff,
		FFmpegPath:    "ffmpeg",
		FFprobePath:   "ffprobe",
	}
}

func (c Config) Validate() error {
	if err := c.validateTuning(); err != nil {
		return err
	}
	if c.ClipCount <= 0 {
		return fmt.Errorf("clip count must be > 0")
	}
	if !positive(c.ClipSec) {
		return fmt.Errorf("clip seconds must be > 0")
	}
	if c.TargetSec < 0 {
		return fmt.Errorf("target seconds must be >= 0")
	}
	if c.MinDistinct < 0 || c.MinDistinct > c.ClipCount {
		return fmt.Errorf("min distinct must be between 0 and clip count")
	}
	if c.FootageLimit <= 0 {
		return fmt.Errorf("footage limit must be > 0")
	}
	if c.FetchAttempts <= 0 {
		return fmt.Errorf("fetch attempts must be > 0")
	}
	if c.OpenRouterAPIKey == "" {
		return errors.New("LLM API key is required (OPENROUTER_API_KEY or OPENAI_API_KEY)")
	}
	if c.PexelsAPIKey == "" {
		return errors.New("PEXELS_API_KEY is required")
	}
	if c.Upload {
		if err := c.YouTube.Validate(); err != nil {
			return err
		}
	}
	return openrouter.ValidateBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts)
}

// validateTuning covers the settings the shorts path also needs.
func (c Config) validateTuning() error {
	if !positive(c.WordsPerSec) {
		return fmt.Errorf("words per second must be > 0")
	}
	if c.WordsPerCue <= 0 {
		return fmt.Errorf("words per cue must be > 0")
	}
	if c.ToleranceSec < 0 || math.IsNaN(c.ToleranceSec) || math.IsInf(c.ToleranceSec, 0) {
		return fmt.Errorf("tolerance must be a finite number >= 0")
	}
	if c.ShortsN <= 0 {
		return fmt.Errorf("shorts must be > 0")
	}
	switch c.Timing {
	case usecase.TimingProportional, usecase.TimingRate:
	default:
		return fmt.Errorf("timing must be %q or %q", usecase.TimingProportional, usecase.TimingRate)
	}
	return c.bounds().Validate()
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

func (c Config) bounds() shorts.Bounds { return shorts.BoundsFrom(c.MinShort, c.MaxShort) }

func (c Config) settings() usecase.Settings {
	return usecase.Settings{
		WordsPerSec:   c.WordsPerSec,
		WordsPerCue:   c.WordsPerCue,
		ToleranceSec:  c.ToleranceSec,
		Bounds:        c.bounds(),
		ShortsN:       c.ShortsN,
		Timing:        c.Timing,
		BurnSubtitles: c.BurnSubtitles,
		ClipCount:     c.ClipCount,
		ClipSec:       c.ClipSec,
		TargetSec:     c.TargetSec,
		MinDistinct:   c.MinDistinct,
		FootageLimit:  c.FootageLimit,
		Filter:        inventory.Filter{MinWidth: c.MinWidth, MinDuration: c.MinFootage},
	}
}

func (c Config) llm() *openrouter.Adapter {
	return openrouter.New(c.OpenRouterAPIKey, c.OpenRouterModel, c.OpenRouterBaseURL, openrouter.Options{
		WordsPerSec: c.WordsPerSec,
		MinShortSec: c.MinShort.Seconds(),
		MaxShortSec: c.MaxShort.Seconds(),
		Logger:      c.Logger,
	})
}

// Run executes one full pipeline run in a fresh staging directory and
// writes its manifest. It returns the run directory.
func Run(ctx context.Context, cfg Config) (string, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	// adapters
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	llm := cfg.llm()
	tts, err := googletts.New(ctx, googletts.Voice{Name: cfg.TTSVoice, LanguageCode: "en-US", SpeakingRate: 1}, cfg.Logger)
	if err != nil {
		return "", err
	}
	fetch := httpfetch.New(retry.Policy{MaxAttempts: cfg.FetchAttempts, Backoff: cfg.FetchBackoff}, httpfetch.DefaultMinBytes, cfg.Logger)

	deps := usecase.Deps{
		Writer:   llm,
		Keywords: llm,
		Picker:   llm,
		Speech:   tts,
		Footage:  pexels.New(cfg.PexelsAPIKey, cfg.Logger),
		Fetcher:  fetch,
		Video:    video,
		Logf:     logf,
	}
	if cfg.OpenAIAPIKey != "" {
		// Generated images are small; the clip size floor does not apply.
		thumbFetch := httpfetch.New(retry.Policy{MaxAttempts: cfg.FetchAttempts, Backoff: cfg.FetchBackoff}, thumbnailMinBytes, cfg.Logger)
		deps.Thumbnailer = imagegen.New(cfg.OpenAIAPIKey, llm, thumbFetch, imagegen.Options{Model: cfg.ImageModel, Logger: cfg.Logger})
	}
	if cfg.Upload {
		up, err := youtube.New(ctx, cfg.YouTube, cfg.Logger)
		if err != nil {
			return "", err
		}
		deps.Uploader = up
	}
	uc := usecase.New(deps)

	now := time.Now().UTC()
	runID := uuid.NewString()
	runDir := buildRunDir(cfg.WorkDir, cfg.Topic, runID, now)
	logf("preparing workspace")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}
	logf("run dir: %s", runDir)

	res, err := uc.Run(ctx, usecase.Input{
		Topic:      cfg.Topic,
		WorkDir:    runDir,
		Upload:     cfg.Upload,
		SkipShorts: cfg.SkipShorts,
		Settings:   cfg.settings(),
	})
	if err != nil {
		return runDir, err
	}

	m := res.Manifest
	m.RunID = runID
	m.CreatedAt = now
	manifestPath, err := writeManifest(runDir, m)
	if err != nil {
		return runDir, err
	}
	logf("manifest written (%d shorts): %s", len(m.Shorts), manifestPath)
	return runDir, nil
}

type ShortsConfig struct {
	Config
	ScriptPath string
	VideoPath  string
	AudioSec   float64
	OutDir     string
}

func (c ShortsConfig) Validate() error {
	if c.ScriptPath == "" || c.VideoPath == "" {
		return errors.New("script and video are required")
	}
	if c.AudioSec < 0 {
		return errors.New("audio seconds must be >= 0")
	}
	if c.OpenRouterAPIKey == "" {
		return errors.New("LLM API key is required (OPENROUTER_API_KEY or OPENAI_API_KEY)")
	}
	if err := c.validateTuning(); err != nil {
		return err
	}
	return openrouter.ValidateBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts)
}

// RunShorts cuts shorts from an existing long-form video.
func RunShorts(ctx context.Context, cfg ShortsConfig) ([]types.ManifestShort, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	script, err := usecase.ReadScript(cfg.ScriptPath)
	if err != nil {
		return nil, err
	}
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(cfg.VideoPath), "shorts")
	}
	uc := usecase.New(usecase.Deps{
		Picker: cfg.llm(),
		Video:  ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		Logf:   logf,
	})
	return uc.Shorts(ctx, usecase.ShortsInput{
		Script:   script,
		Video:    cfg.VideoPath,
		AudioSec: cfg.AudioSec,
		OutDir:   outDir,
		Settings: cfg.settings(),
	})
}

// PreviewPlan assembles a footage list file the way a run would, using
// each URL as the clip path and the capped source length as its duration.
func PreviewPlan(footage []byte, filter inventory.Filter, opt inventory.PlanOptions, clipSec float64) (types.CompositionPlan, error) {
	recs, err := inventory.ParseFootage(footage)
	if err != nil {
		return types.CompositionPlan{}, err
	}
	pool := &inventory.Pool{}
	for _, r := range inventory.Select(recs, filter) {
		d := r.DurationSec
		if clipSec > 0 && d > clipSec {
			d = clipSec
		}
		pool.Add(types.ClipRecord{Path: r.URL, DurationSec: d})
	}
	return inventory.Plan(pool.Snapshot(), opt)
}

func writeManifest(dir string, m types.Manifest) (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	p := filepath.Join(dir, "manifest.json")
	if err := artifact.WriteAtomic(p, b); err != nil {
		return "", err
	}
	return p, nil
}

// buildRunDir gives every run its own staging directory so concurrent runs
// never share artifacts.
func buildRunDir(workDir, topic, runID string, now time.Time) string {
	if workDir == "" {
		workDir = ".autotube"
	}
	name := normalizePathSegment(topic)
	if r := []rune(name); len(r) > 40 {
		name = strings.Trim(string(r[:40]), "-")
	}
	if name == "" {
		name = "run"
	}
	ts := now.UTC().Format("20060102-150405Z")
	id := strings.ReplaceAll(runID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return filepath.Join(workDir, "runs", fmt.Sprintf("%s-%s-%s", ts, name, id))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ensure adapters implement ports
var (
	_ ports.VideoTool        = (*ffmpeg.Adapter)(nil)
	_ ports.ScriptWriter     = (*openrouter.Adapter)(nil)
	_ ports.KeywordExtractor = (*openrouter.Adapter)(nil)
	_ ports.SegmentPicker    = (*openrouter.Adapter)(nil)
	_ ports.Speech           = (*googletts.Client)(nil)
	_ ports.FootageSearch    = (*pexels.Client)(nil)
	_ ports.Fetcher          = (*httpfetch.Fetcher)(nil)
	_ ports.Uploader         = (*youtube.Client)(nil)
	_ ports.Thumbnailer      = (*imagegen.Generator)(nil)
)
