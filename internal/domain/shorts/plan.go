package shorts

import (
	"fmt"
	"math"
	"strings"

	"github.com/forPelevin/autotube/internal/domain/timing"
	"github.com/forPelevin/autotube/internal/types"
)

type PlanInput struct {
	Script    string
	Picks     []types.ShortPick
	Estimator timing.Estimator
	// TotalSec is the narration length, used to spread shorts whose text
	// could not be located.
	TotalSec float64
	Bounds   Bounds
	Limit    int
	Logf     func(format string, args ...any)
}

// Plan turns text-level picks into timed segments: locate each pick's start
// and end text, estimate their playback times and clamp the span.
func Plan(in PlanInput) ([]types.ShortSegment, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if in.Estimator == nil {
		return nil, fmt.Errorf("plan shorts: estimator is required")
	}
	if err := in.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("plan shorts: %w", err)
	}
	if err := timing.CheckDuration("narration", in.TotalSec); err != nil {
		return nil, fmt.Errorf("plan shorts: %w", err)
	}

	picks := in.Picks
	if in.Limit > 0 && len(picks) > in.Limit {
		picks = picks[:in.Limit]
	}

	out := make([]types.ShortSegment, 0, len(picks))
	for i, p := range picks {
		start, err := locateTime(in.Script, p.StartText, false, in.Estimator)
		if err != nil {
			return nil, fmt.Errorf("plan short %d: %w", p.ID, err)
		}
		if math.IsNaN(start) {
			start = in.TotalSec * float64(i) / float64(len(picks))
			logf("short %d: start text %q not found, using %.2fs", p.ID, truncate(p.StartText, 40), start)
		}

		end, err := locateTime(in.Script, p.EndText, true, in.Estimator)
		if err != nil {
			return nil, fmt.Errorf("plan short %d: %w", p.ID, err)
		}
		if math.IsNaN(end) {
			end = start
			logf("short %d: end text %q not found, using minimum length", p.ID, truncate(p.EndText, 40))
		}

		start, end = in.Bounds.Clamp(roundMS(start), roundMS(end))
		// Whole milliseconds keep the duration exactly inside the bounds.
		startMS := int64(math.Round(start * 1000))
		durMS := int64(math.Round((end - start) * 1000))
		start = float64(startMS) / 1000
		end = float64(startMS+durMS) / 1000
		dur := float64(durMS) / 1000
		title := strings.TrimSpace(p.Title)
		if title == "" {
			title = fmt.Sprintf("Short %d", p.ID)
		}
		out = append(out, types.ShortSegment{
			ID:          p.ID,
			Title:       title,
			StartSec:    start,
			EndSec:      end,
			DurationSec: dur,
		})
		logf("short %d: %.1fs - %.1fs (%.1fs) %s", p.ID, start, end, dur, title)
	}
	return out, nil
}

// locateTime returns NaN when text cannot be found. For end text the time is
// taken after the matched words so the short finishes the sentence.
func locateTime(script, text string, after bool, est timing.Estimator) (float64, error) {
	off, n, ok := LocateSpan(script, text)
	if !ok {
		return math.NaN(), nil
	}
	if after {
		off += n
	}
	return est.Estimate(off)
}

// SegmentText returns the part of the narration that plays inside seg.
func SegmentText(script string, seg types.ShortSegment, totalSec float64) string {
	from := timing.OffsetAt(script, seg.StartSec, totalSec)
	to := timing.OffsetAt(script, seg.EndSec, totalSec)
	return timing.Slice(script, from, to)
}

func roundMS(sec float64) float64 { return math.Round(sec*1000) / 1000 }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
