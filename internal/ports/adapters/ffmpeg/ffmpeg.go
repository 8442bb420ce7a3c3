package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/autotube/internal/types"
)

const (
	longWidth   = 1920
	longHeight  = 1080
	shortWidth  = 1080
	shortHeight = 1920
	thumbWidth  = 1280
	thumbHeight = 720
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

type probeInfo struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (a *Adapter) probe(ctx context.Context, path string) (probeInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration:stream=codec_type,width,height",
		"-of", "json",
		path,
	)
	b, err := cmd.Output()
	if err != nil {
		return probeInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var info probeInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return probeInfo{}, errors.WithStack(err)
	}
	return info, nil
}

func (info probeInfo) duration() (float64, error) {
	sec, err := strconv.ParseFloat(strings.TrimSpace(info.Format.Duration), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse duration %q", info.Format.Duration)
	}
	return sec, nil
}

func (info probeInfo) hasVideo() bool {
	for _, s := range info.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			return true
		}
	}
	return false
}

// NormalizeClip trims a downloaded clip, fills the 16:9 frame and drops
// audio so every clip concatenates with stream copy.
func (a *Adapter) NormalizeClip(ctx context.Context, in, out string, maxSec float64) (float64, error) {
	info, err := a.probe(ctx, in)
	if err != nil {
		return 0, err
	}
	if !info.hasVideo() {
		return 0, fmt.Errorf("normalize %s: no video stream", in)
	}
	dur, err := info.duration()
	if err != nil {
		return 0, err
	}
	if dur <= 0 {
		return 0, fmt.Errorf("normalize %s: zero duration", in)
	}
	trim := dur
	if maxSec > 0 && maxSec < trim {
		trim = maxSec
	}

	stream := ffmpeg.Input(in).
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", longWidth, longHeight)}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{fmt.Sprintf("%d:%d", longWidth, longHeight)}).
		Output(out, ffmpeg.KwArgs{
			"t":       fmtSeconds(trim),
			"r":       30,
			"c:v":     "libx264",
			"preset":  "medium",
			"crf":     23,
			"pix_fmt": "yuv420p",
			"an":      "",
		})
	if err := a.run(ctx, "normalize clip", stream); err != nil {
		return 0, err
	}
	return trim, nil
}

func (a *Adapter) Concat(ctx context.Context, listPath, out string) error {
	stream := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(out, ffmpeg.KwArgs{"c": "copy"})
	return a.run(ctx, "concat", stream)
}

// Merge muxes narration over the silent video. A stretch report remaps the
// video timestamps by the report factor; the output always ends with the
// shorter stream.
func (a *Adapter) Merge(ctx context.Context, video, audio, out string, rep types.DurationReport) error {
	v := ffmpeg.Input(video).Video()
	if rep.Action == types.ActionStretch {
		if rep.Factor <= 0 {
			return fmt.Errorf("merge: invalid stretch factor %v", rep.Factor)
		}
		v = v.Filter("setpts", ffmpeg.Args{fmt.Sprintf("%.6f*PTS", rep.Factor)})
	}
	aud := ffmpeg.Input(audio).Audio()
	stream := ffmpeg.Output([]*ffmpeg.Stream{v, aud}, out, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"preset":   "medium",
		"crf":      23,
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"b:a":      "192k",
		"movflags": "+faststart",
		"shortest": "",
	})
	return a.run(ctx, "merge", stream)
}

// CutVertical extracts seg from the long video as a 9:16 clip, burning the
// ASS subtitles when burnASS is set.
func (a *Adapter) CutVertical(ctx context.Context, in string, seg types.ShortSegment, burnASS, out string) error {
	if seg.DurationSec <= 0 {
		return fmt.Errorf("cut short %d: non-positive duration", seg.ID)
	}
	src := ffmpeg.Input(in, ffmpeg.KwArgs{
		"ss": fmtSeconds(seg.StartSec),
		"t":  fmtSeconds(seg.DurationSec),
	})
	v := src.Video().
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", shortWidth, shortHeight)}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{fmt.Sprintf("%d:%d", shortWidth, shortHeight)})
	if burnASS != "" {
		v = v.Filter("subtitles", ffmpeg.Args{burnASS})
	}
	stream := ffmpeg.Output([]*ffmpeg.Stream{v, src.Audio()}, out, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"preset":   "medium",
		"crf":      23,
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"b:a":      "128k",
		"movflags": "+faststart",
	})
	return a.run(ctx, "cut short", stream)
}

// EncodeThumbnail scales and crops an image to 1280x720 and writes a single
// JPEG frame, small enough for YouTube's 2 MB thumbnail limit.
func (a *Adapter) EncodeThumbnail(ctx context.Context, in, out string) error {
	stream := ffmpeg.Input(in).
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", thumbWidth, thumbHeight)}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{fmt.Sprintf("%d:%d", thumbWidth, thumbHeight)}).
		Output(out, ffmpeg.KwArgs{
			"frames:v": 1,
			"q:v":      3,
		})
	return a.run(ctx, "encode thumbnail", stream)
}

func (a *Adapter) run(ctx context.Context, what string, stream *ffmpeg.Stream) error {
	args := stream.OverWriteOutput().GetArgs()
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w\n%s", what, err, tail(string(b), 2000))
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
