package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/autotube/internal/types"
)

// RenderSRT renders cues in SubRip format: index, time range, text and a
// blank separator line.
func RenderSRT(cues []types.SubtitleCue) string {
	var b strings.Builder
	for i, c := range cues {
		idx := c.Index
		if idx <= 0 {
			idx = i + 1
		}
		fmt.Fprintf(&b, "%d\n", idx)
		fmt.Fprintf(&b, "%s --> %s\n", srtTime(c.StartSec), srtTime(c.EndSec))
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(c.Text))
	}
	return b.String()
}

// srtTime formats seconds as HH:MM:SS,mmm.
func srtTime(sec float64) string {
	ms := toMS(sec)
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
