package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/autotube/internal/domain/timing"
	"github.com/forPelevin/autotube/internal/types"
)

const DefaultWordsPerCue = 5

// BuildCues splits text into groups of wordsPerCue words and gives every
// group an equal share of totalSec. Boundaries are computed in whole
// milliseconds, so cues never gap or overlap and the last cue ends exactly
// at totalSec (rounded to the millisecond).
func BuildCues(text string, totalSec float64, wordsPerCue int) ([]types.SubtitleCue, error) {
	if wordsPerCue <= 0 {
		return nil, fmt.Errorf("words per cue must be > 0, got %d", wordsPerCue)
	}
	if err := timing.CheckDuration("subtitle total", totalSec); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}
	n := (len(words) + wordsPerCue - 1) / wordsPerCue
	totalMS := toMS(totalSec)

	cues := make([]types.SubtitleCue, 0, n)
	for i := 0; i < n; i++ {
		lo := i * wordsPerCue
		hi := min(lo+wordsPerCue, len(words))
		startMS := boundaryMS(i, n, totalMS)
		endMS := boundaryMS(i+1, n, totalMS)
		cues = append(cues, types.SubtitleCue{
			Index:    i + 1,
			StartSec: float64(startMS) / 1000,
			EndSec:   float64(endMS) / 1000,
			Text:     strings.Join(words[lo:hi], " "),
		})
	}
	return cues, nil
}

// boundaryMS is the i-th of n equal splits of total, rounded half up.
func boundaryMS(i, n int, total int64) int64 {
	return (int64(i)*total*2 + int64(n)) / (int64(n) * 2)
}

func toMS(sec float64) int64 {
	if sec <= 0 {
		return 0
	}
	return int64(sec*1000 + 0.5)
}
