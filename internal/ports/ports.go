package ports

import (
	"context"

	"github.com/forPelevin/autotube/internal/types"
)

type ScriptWriter interface {
	WriteScript(ctx context.Context, topic string) (types.Script, error)
}

type KeywordExtractor interface {
	Keywords(ctx context.Context, script string) ([]string, error)
}

type SegmentPicker interface {
	PickShorts(ctx context.Context, script string, n int) ([]types.ShortPick, error)
}

type Speech interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

type FootageSearch interface {
	Search(ctx context.Context, keywords []string, limit int) ([]types.FootageRecord, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url, outPath string) error
}

type VideoTool interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	// NormalizeClip trims to maxSec and scales to the long-form frame, no
	// audio. It returns the duration of out.
	NormalizeClip(ctx context.Context, in, out string, maxSec float64) (float64, error)
	Concat(ctx context.Context, listPath, out string) error
	Merge(ctx context.Context, video, audio, out string, rep types.DurationReport) error
	CutVertical(ctx context.Context, in string, seg types.ShortSegment, burnASS, out string) error
	// EncodeThumbnail fills a 1280x720 frame from the image and writes it
	// as JPEG.
	EncodeThumbnail(ctx context.Context, in, out string) error
}

// Thumbnailer renders a thumbnail image for the video to outPath.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, title, script, outPath string) error
}

type Uploader interface {
	Upload(ctx context.Context, u types.Upload) (string, error)
}
