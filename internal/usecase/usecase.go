package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forPelevin/autotube/internal/artifact"
	"github.com/forPelevin/autotube/internal/domain/inventory"
	"github.com/forPelevin/autotube/internal/domain/reconcile"
	"github.com/forPelevin/autotube/internal/domain/shorts"
	"github.com/forPelevin/autotube/internal/domain/subtitles"
	"github.com/forPelevin/autotube/internal/domain/timing"
	"github.com/forPelevin/autotube/internal/ports"
	"github.com/forPelevin/autotube/internal/types"
)

// Smallest audio or video file a stage will trust.
const minMediaBytes = 1024

const (
	TimingProportional = "proportional"
	TimingRate         = "rate"
)

type Deps struct {
	Writer   ports.ScriptWriter
	Keywords ports.KeywordExtractor
	Picker   ports.SegmentPicker
	Speech   ports.Speech
	Footage  ports.FootageSearch
	Fetcher  ports.Fetcher
	Video    ports.VideoTool
	// Uploader may be nil when uploads are disabled.
	Uploader ports.Uploader
	// Thumbnailer may be nil; the video then keeps YouTube's own frame.
	Thumbnailer ports.Thumbnailer
	Logf        func(format string, args ...any)
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logf == nil {
		d.Logf = func(string, ...any) {}
	}
	return Usecase{d: d}
}

// Settings are the tuning knobs shared by the long-form and shorts paths.
type Settings struct {
	WordsPerSec   float64
	WordsPerCue   int
	ToleranceSec  float64
	Bounds        shorts.Bounds
	ShortsN       int
	Timing        string
	BurnSubtitles bool

	ClipCount    int
	ClipSec      float64
	TargetSec    float64
	MinDistinct  int
	FootageLimit int
	Filter       inventory.Filter
}

type Input struct {
	Topic      string
	WorkDir    string
	Upload     bool
	SkipShorts bool
	Settings
}

type Result struct {
	Manifest types.Manifest
}

// Run executes the long-form pipeline and, unless skipped, the shorts path
// on its output. Every artifact lands under in.WorkDir.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := u.d.Logf
	m := types.Manifest{}

	script, err := u.writeScript(ctx, in)
	if err != nil {
		return Result{}, err
	}
	m.Title = script.Title
	m.Script = "script.txt"

	audioSec, err := u.narrate(ctx, in.WorkDir, script.Text)
	if err != nil {
		return Result{}, err
	}
	m.Audio, m.AudioSec = "audio.mp3", audioSec

	recs, err := u.findFootage(ctx, in, script.Text)
	if err != nil {
		return Result{}, err
	}

	pool, err := u.collectClips(ctx, in, recs)
	if err != nil {
		return Result{}, err
	}

	plan, videoSec, err := u.compose(ctx, in, pool)
	if err != nil {
		return Result{}, err
	}
	m.Plan = plan

	rep, err := u.merge(ctx, in, videoSec, audioSec)
	if err != nil {
		return Result{}, err
	}
	m.Report = rep
	m.Video = "final_video.mp4"

	srtPath := filepath.Join(in.WorkDir, "final_video.srt")
	cues, err := subtitles.BuildCues(script.Text, audioSec, in.WordsPerCue)
	if err != nil {
		return Result{}, fail(StageSubtitles, "final_video.srt", err)
	}
	if err := artifact.WriteAtomic(srtPath, []byte(subtitles.RenderSRT(cues))); err != nil {
		return Result{}, fail(StageSubtitles, "final_video.srt", err)
	}
	m.Subtitles = "final_video.srt"
	logf("subtitles: %d cues over %.1fs", len(cues), audioSec)

	if u.d.Thumbnailer != nil {
		if err := u.thumbnail(ctx, in.WorkDir, script); err != nil {
			logf("thumbnail skipped: %v", err)
		} else {
			m.Thumbnail = "thumbnail.jpg"
		}
	}

	if !in.SkipShorts {
		sh, err := u.Shorts(ctx, ShortsInput{
			Script:   script.Text,
			Video:    filepath.Join(in.WorkDir, m.Video),
			AudioSec: audioSec,
			OutDir:   filepath.Join(in.WorkDir, "shorts"),
			Settings: in.Settings,
		})
		if err != nil {
			return Result{}, err
		}
		for i := range sh {
			sh[i].File = filepath.ToSlash(filepath.Join("shorts", sh[i].File))
			if sh[i].Subtitles != "" {
				sh[i].Subtitles = filepath.ToSlash(filepath.Join("shorts", sh[i].Subtitles))
			}
		}
		m.Shorts = sh
	}

	if in.Upload {
		urls, err := u.upload(ctx, in.WorkDir, script, m)
		if err != nil {
			return Result{}, err
		}
		m.Uploads = urls
	}
	return Result{Manifest: m}, nil
}

func (u Usecase) writeScript(ctx context.Context, in Input) (types.Script, error) {
	script, err := u.d.Writer.WriteScript(ctx, in.Topic)
	if err != nil {
		return types.Script{}, fail(StageScript, "", err)
	}
	txt := filepath.Join(in.WorkDir, "script.txt")
	if err := artifact.WriteAtomic(txt, []byte(script.Text)); err != nil {
		return types.Script{}, fail(StageScript, "script.txt", err)
	}
	if err := writeJSON(filepath.Join(in.WorkDir, "script.json"), script); err != nil {
		return types.Script{}, fail(StageScript, "script.json", err)
	}
	u.d.Logf("script: %q (%d words)", script.Title, len(strings.Fields(script.Text)))
	return script, nil
}

func (u Usecase) narrate(ctx context.Context, dir, text string) (float64, error) {
	out := filepath.Join(dir, "audio.mp3")
	if err := u.d.Speech.Synthesize(ctx, text, out); err != nil {
		return 0, fail(StageAudio, "audio.mp3", err, out)
	}
	if err := artifact.Require(out, minMediaBytes); err != nil {
		return 0, fail(StageAudio, "audio.mp3", err, out)
	}
	sec, err := u.d.Video.ProbeDuration(ctx, out)
	if err == nil {
		err = timing.CheckDuration("audio", sec)
	}
	if err != nil {
		return 0, fail(StageAudio, "audio.mp3", err, out)
	}
	u.d.Logf("audio: %.1fs", sec)
	return sec, nil
}

func (u Usecase) findFootage(ctx context.Context, in Input, script string) ([]types.FootageRecord, error) {
	kws, err := u.d.Keywords.Keywords(ctx, script)
	if err != nil {
		return nil, fail(StageFootage, "", err)
	}
	found, err := u.d.Footage.Search(ctx, kws, in.FootageLimit)
	if err != nil {
		return nil, fail(StageFootage, "", err)
	}
	recs := inventory.Select(found, in.Filter)
	if err := writeJSON(filepath.Join(in.WorkDir, "videos.json"), recs); err != nil {
		return nil, fail(StageFootage, "videos.json", err)
	}
	u.d.Logf("footage: %d keywords, %d hits, %d usable", len(kws), len(found), len(recs))
	if len(recs) == 0 {
		return nil, fail(StageFootage, "videos.json", fmt.Errorf("%w: no usable footage", inventory.ErrInsufficientInventory))
	}
	return recs, nil
}

// collectClips downloads and normalizes footage until the pool holds
// ClipCount clips. A clip that fails either step is skipped.
func (u Usecase) collectClips(ctx context.Context, in Input, recs []types.FootageRecord) (*inventory.Pool, error) {
	dir := filepath.Join(in.WorkDir, "clips")
	pool := &inventory.Pool{}
	for i, r := range recs {
		if in.ClipCount > 0 && pool.Len() >= in.ClipCount {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fail(StageClips, "", err)
		}
		raw := filepath.Join(dir, fmt.Sprintf("raw_%02d.mp4", i))
		out := filepath.Join(dir, fmt.Sprintf("clip_%02d.mp4", i))
		if err := u.d.Fetcher.Fetch(ctx, r.URL, raw); err != nil {
			u.d.Logf("clip %d: download failed: %v", i, err)
			continue
		}
		dur, err := u.d.Video.NormalizeClip(ctx, raw, out, in.ClipSec)
		artifact.Discard(raw)
		if err != nil {
			artifact.Discard(out)
			u.d.Logf("clip %d: normalize failed: %v", i, err)
			continue
		}
		pool.Add(types.ClipRecord{Path: out, DurationSec: dur})
		u.d.Logf("clip %d: %.1fs (%s)", i, dur, r.Keyword)
	}
	u.d.Logf("clips: %d of %d ready", pool.Len(), len(recs))
	return pool, nil
}

func (u Usecase) compose(ctx context.Context, in Input, pool *inventory.Pool) (types.CompositionPlan, float64, error) {
	plan, err := inventory.Plan(pool.Snapshot(), inventory.PlanOptions{
		TargetCount: in.ClipCount,
		MinDistinct: in.MinDistinct,
	})
	if err != nil {
		return types.CompositionPlan{}, 0, fail(StageCompose, "", err)
	}
	if plan.Repeated > 0 {
		u.d.Logf("compose: %d distinct clips, repeating %d", plan.Distinct, plan.Repeated)
	}
	if inventory.Short(plan, in.TargetSec) {
		u.d.Logf("compose: planned %.1fs is below the %.1fs target", plan.TotalSec, in.TargetSec)
	}

	list := filepath.Join(in.WorkDir, "concat.txt")
	if err := inventory.WriteConcatList(list, plan); err != nil {
		return types.CompositionPlan{}, 0, fail(StageCompose, "concat.txt", err)
	}
	silent := filepath.Join(in.WorkDir, "silent_video.mp4")
	if err := u.d.Video.Concat(ctx, list, silent); err != nil {
		return types.CompositionPlan{}, 0, fail(StageCompose, "silent_video.mp4", err, silent)
	}
	if err := artifact.Require(silent, minMediaBytes); err != nil {
		return types.CompositionPlan{}, 0, fail(StageCompose, "silent_video.mp4", err, silent)
	}
	videoSec, err := u.d.Video.ProbeDuration(ctx, silent)
	if err != nil {
		return types.CompositionPlan{}, 0, fail(StageCompose, "silent_video.mp4", err)
	}
	u.d.Logf("compose: %d clips, %.1fs", len(plan.Clips), videoSec)
	return plan, videoSec, nil
}

func (u Usecase) merge(ctx context.Context, in Input, videoSec, audioSec float64) (types.DurationReport, error) {
	silent := filepath.Join(in.WorkDir, "silent_video.mp4")
	audio := filepath.Join(in.WorkDir, "audio.mp3")
	out := filepath.Join(in.WorkDir, "final_video.mp4")
	for _, p := range []string{silent, audio} {
		if err := artifact.Require(p, minMediaBytes); err != nil {
			return types.DurationReport{}, fail(StageMerge, filepath.Base(p), err)
		}
	}

	rep, err := reconcile.Reconcile(videoSec, audioSec, in.ToleranceSec)
	if err != nil {
		return types.DurationReport{}, fail(StageMerge, "", err)
	}
	u.d.Logf("merge: %s", reconcile.Describe(rep))

	if err := u.d.Video.Merge(ctx, silent, audio, out, rep); err != nil {
		return types.DurationReport{}, fail(StageMerge, "final_video.mp4", err, out)
	}
	if err := artifact.Require(out, minMediaBytes); err != nil {
		return types.DurationReport{}, fail(StageMerge, "final_video.mp4", err, out)
	}
	return rep, nil
}

// thumbnail renders the cover image. It is best effort: on failure nothing
// is left behind and the run continues.
func (u Usecase) thumbnail(ctx context.Context, dir string, script types.Script) error {
	raw := filepath.Join(dir, "thumbnail_raw.png")
	out := filepath.Join(dir, "thumbnail.jpg")
	defer artifact.Discard(raw)
	if err := u.d.Thumbnailer.Thumbnail(ctx, script.Title, script.Text, raw); err != nil {
		return fail(StageThumbnail, "thumbnail_raw.png", err, raw)
	}
	if err := u.d.Video.EncodeThumbnail(ctx, raw, out); err != nil {
		return fail(StageThumbnail, "thumbnail.jpg", err, out)
	}
	if err := artifact.Require(out, 1); err != nil {
		return fail(StageThumbnail, "thumbnail.jpg", err, out)
	}
	u.d.Logf("thumbnail: %s", out)
	return nil
}

type ShortsInput struct {
	Script string
	Video  string
	// AudioSec is the narration length. Zero means probe the video.
	AudioSec float64
	OutDir   string
	Settings
}

// Shorts picks, times and renders the vertical clips. Returned paths are
// relative to in.OutDir.
func (u Usecase) Shorts(ctx context.Context, in ShortsInput) ([]types.ManifestShort, error) {
	logf := u.d.Logf
	if err := artifact.Require(in.Video, minMediaBytes); err != nil {
		return nil, fail(StageShorts, filepath.Base(in.Video), err)
	}
	total := in.AudioSec
	if total <= 0 {
		sec, err := u.d.Video.ProbeDuration(ctx, in.Video)
		if err != nil {
			return nil, fail(StageShorts, filepath.Base(in.Video), err)
		}
		total = sec
	}

	est, total, err := estimator(in.Script, total, in.Timing, in.WordsPerSec)
	if err != nil {
		return nil, fail(StageShorts, "", err)
	}

	picks, err := u.d.Picker.PickShorts(ctx, in.Script, in.ShortsN)
	if err != nil {
		return nil, fail(StageShorts, "", err)
	}
	segs, err := shorts.Plan(shorts.PlanInput{
		Script:    in.Script,
		Picks:     picks,
		Estimator: est,
		TotalSec:  total,
		Bounds:    in.Bounds,
		Limit:     in.ShortsN,
		Logf:      logf,
	})
	if err != nil {
		return nil, fail(StageShorts, "", err)
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].StartSec < segs[j].StartSec })
	for i := range segs {
		segs[i].ID = i + 1
	}

	// Everything written so far is removed if a later short fails.
	var written []string
	abort := func(art string, err error, partial ...string) error {
		return fail(StageShorts, art, err, append(written, partial...)...)
	}

	manifest := filepath.Join(in.OutDir, "shorts_segments.json")
	if err := writeJSON(manifest, types.SegmentManifest{Segments: segs}); err != nil {
		return nil, abort("shorts_segments.json", err, manifest)
	}
	written = append(written, manifest)

	out := make([]types.ManifestShort, 0, len(segs))
	for _, seg := range segs {
		name := fmt.Sprintf("short_%d", seg.ID)
		text := shorts.SegmentText(in.Script, seg, total)
		ms := types.ManifestShort{ShortSegment: seg, File: name + ".mp4", Text: text}

		assPath := ""
		if in.BurnSubtitles {
			cues, err := subtitles.BuildCues(text, seg.DurationSec, in.WordsPerCue)
			if err != nil {
				return nil, abort(name+".ass", err)
			}
			if len(cues) > 0 {
				assPath = filepath.Join(in.OutDir, name+".ass")
				if err := artifact.WriteAtomic(assPath, []byte(subtitles.RenderShortsASS(cues))); err != nil {
					return nil, abort(name+".ass", err, assPath)
				}
				written = append(written, assPath)
				ms.Subtitles = name + ".ass"
			}
		}

		clip := filepath.Join(in.OutDir, ms.File)
		if err := u.d.Video.CutVertical(ctx, in.Video, seg, assPath, clip); err != nil {
			return nil, abort(ms.File, err, clip)
		}
		if err := artifact.Require(clip, minMediaBytes); err != nil {
			return nil, abort(ms.File, err, clip)
		}
		written = append(written, clip)
		logf("short %d: %s (%.1fs)", seg.ID, ms.File, seg.DurationSec)
		out = append(out, ms)
	}
	return out, nil
}

// estimator picks proportional timing over the known narration length, or
// the fixed speech rate, in which case the total is derived from the text.
func estimator(script string, audioSec float64, mode string, wps float64) (timing.Estimator, float64, error) {
	if wps <= 0 {
		wps = timing.DefaultWordsPerSecond
	}
	switch mode {
	case "", TimingProportional:
		if err := timing.CheckDuration("narration", audioSec); err != nil {
			return nil, 0, err
		}
		return timing.NewProportional(script, audioSec), audioSec, nil
	case TimingRate:
		total, err := timing.FixedRate(script, len([]rune(script)), wps)
		if err != nil {
			return nil, 0, err
		}
		return timing.FixedRateEstimator{Text: script, WordsPerSec: wps}, total, nil
	default:
		return nil, 0, fmt.Errorf("unknown timing mode %q", mode)
	}
}

func (u Usecase) upload(ctx context.Context, dir string, script types.Script, m types.Manifest) ([]string, error) {
	if u.d.Uploader == nil {
		return nil, fail(StageUpload, "", errors.New("uploads requested but no uploader is configured"))
	}
	long := types.Upload{
		Path:        filepath.Join(dir, m.Video),
		Title:       script.Title,
		Description: script.Description,
		Tags:        script.Tags,
		Captions:    filepath.Join(dir, m.Subtitles),
	}
	if m.Thumbnail != "" {
		long.Thumbnail = filepath.Join(dir, m.Thumbnail)
	}
	url, err := u.d.Uploader.Upload(ctx, long)
	if err != nil {
		return nil, fail(StageUpload, m.Video, err)
	}
	urls := []string{url}
	u.d.Logf("upload: %s", url)

	for _, s := range m.Shorts {
		su, err := u.d.Uploader.Upload(ctx, types.Upload{
			Path:        filepath.Join(dir, filepath.FromSlash(s.File)),
			Title:       s.Title,
			Description: fmt.Sprintf("%s\n\nFull video: %s", s.Title, url),
			Tags:        script.Tags,
			Short:       true,
		})
		if err != nil {
			return urls, fail(StageUpload, s.File, err)
		}
		urls = append(urls, su)
		u.d.Logf("upload: %s", su)
	}
	return urls, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return artifact.WriteAtomic(path, append(b, '\n'))
}

// ReadScript loads a script written by an earlier run.
func ReadScript(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("script %s is empty", path)
	}
	return s, nil
}
