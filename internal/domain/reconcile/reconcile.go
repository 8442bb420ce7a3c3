package reconcile

import (
	"fmt"
	"math"

	"github.com/forPelevin/autotube/internal/domain/timing"
	"github.com/forPelevin/autotube/internal/types"
)

// DefaultToleranceSec is the drift the merge step absorbs by cutting to the
// shorter stream.
const DefaultToleranceSec = 30.0

// ErrInvalidDuration is shared with the timing package so callers can test
// for either with errors.Is.
var ErrInvalidDuration = timing.ErrInvalidDuration

// Reconcile compares the silent video against the narration. Within
// tolerance the merge keeps both as-is and the shorter stream governs;
// beyond it the video timeline is remapped by audio/video so both end
// together.
func Reconcile(videoSec, audioSec, toleranceSec float64) (types.DurationReport, error) {
	if err := timing.CheckDuration("video", videoSec); err != nil {
		return types.DurationReport{}, err
	}
	if err := timing.CheckDuration("audio", audioSec); err != nil {
		return types.DurationReport{}, err
	}
	if math.IsNaN(toleranceSec) || math.IsInf(toleranceSec, 0) || toleranceSec < 0 {
		return types.DurationReport{}, fmt.Errorf("tolerance must be >= 0 and finite, got %v", toleranceSec)
	}

	rep := types.DurationReport{
		VideoSec: videoSec,
		AudioSec: audioSec,
		DriftSec: math.Abs(videoSec - audioSec),
		Factor:   1,
		Action:   types.ActionAccept,
	}
	if rep.DriftSec > toleranceSec {
		rep.Action = types.ActionStretch
		rep.Factor = audioSec / videoSec
	}
	return rep, nil
}

// Describe renders a one-line summary for logs.
func Describe(r types.DurationReport) string {
	s := fmt.Sprintf("video %.1fs, audio %.1fs, drift %.1fs: %s", r.VideoSec, r.AudioSec, r.DriftSec, r.Action)
	if r.Action == types.ActionStretch {
		s += fmt.Sprintf(" (setpts %.6f)", r.Factor)
	}
	return s
}
