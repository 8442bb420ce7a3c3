package subtitles

import (
	"strings"
	"testing"

	"github.com/forPelevin/autotube/internal/types"
)

func TestRenderShortsASS_DialoguePerCue(t *testing.T) {
	cues := []types.SubtitleCue{
		{Index: 1, StartSec: 0, EndSec: 2.5, Text: "Hello {world}"},
		{Index: 2, StartSec: 2.5, EndSec: 5, Text: "   "},
		{Index: 3, StartSec: 5, EndSec: 7.25, Text: "again"},
	}
	ass := RenderShortsASS(cues)
	if got := strings.Count(ass, "Dialogue: "); got != 2 {
		t.Fatalf("expected 2 dialogue lines, got %d:\n%s", got, ass)
	}
	if !strings.Contains(ass, "Dialogue: 0,0:00:00.00,0:00:02.50,Shorts,,0,0,0,,Hello (world)") {
		t.Fatalf("unexpected first dialogue:\n%s", ass)
	}
	if !strings.Contains(ass, "PlayResY: 1920") {
		t.Fatalf("expected vertical play resolution")
	}
}

func TestAssTime_Format(t *testing.T) {
	got := assTime(61.234)
	if got != "0:01:01.23" {
		t.Fatalf("unexpected assTime: %s", got)
	}
}
