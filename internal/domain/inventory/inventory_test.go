package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/autotube/internal/types"
)

func clips(durs ...float64) []types.ClipRecord {
	out := make([]types.ClipRecord, len(durs))
	for i, d := range durs {
		out[i] = types.ClipRecord{Path: fmt.Sprintf("clip_%d.mp4", i), DurationSec: d}
	}
	return out
}

func TestAssemble_RepeatsEarliest(t *testing.T) {
	pool := clips(10, 10, 10, 10, 10)
	got, err := Assemble(pool, 8)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"clip_0", "clip_1", "clip_2", "clip_3", "clip_4", "clip_0", "clip_1", "clip_2"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	var total float64
	for i, c := range got {
		if c.Path != want[i]+".mp4" {
			t.Fatalf("entry %d = %s, want %s", i, c.Path, want[i])
		}
		total += c.DurationSec
	}
	if total != 80 {
		t.Fatalf("total = %v, want 80", total)
	}
}

func TestAssemble_LengthAndPrefix(t *testing.T) {
	for poolN := 1; poolN <= 7; poolN++ {
		for target := 1; target <= 20; target++ {
			pool := clips(make([]float64, poolN)...)
			got, err := Assemble(pool, target)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != target {
				t.Fatalf("pool %d target %d: len %d", poolN, target, len(got))
			}
			for i := 0; i < min(poolN, target); i++ {
				if got[i] != pool[i] {
					t.Fatalf("pool %d target %d: entry %d changed", poolN, target, i)
				}
			}
			for i := poolN; i < target; i++ {
				if got[i] != pool[(i-poolN)%poolN] {
					t.Fatalf("pool %d target %d: repeat %d out of order", poolN, target, i)
				}
			}
		}
	}
}

func TestAssemble_DoesNotAliasPool(t *testing.T) {
	pool := clips(1, 2, 3)
	got, _ := Assemble(pool, 2)
	got[0].Path = "changed"
	if pool[0].Path != "clip_0.mp4" {
		t.Fatalf("Assemble aliased the pool")
	}
}

func TestAssemble_Errors(t *testing.T) {
	if _, err := Assemble(nil, 3); !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}
	if _, err := Assemble(clips(1), 0); err == nil {
		t.Fatalf("expected error for zero target")
	}
}

func TestPlan(t *testing.T) {
	plan, err := Plan(clips(30, 20, 25), PlanOptions{TargetCount: 5, MinDistinct: 2})
	if err != nil {
		t.Fatal(err)
	}
	if plan.TotalSec != 30+20+25+30+20 || plan.Distinct != 3 || plan.Repeated != 2 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if !Short(plan, 200) || Short(plan, 100) {
		t.Fatalf("Short misreports a %vs plan", plan.TotalSec)
	}

	_, err = Plan(clips(30), PlanOptions{TargetCount: 5, MinDistinct: 2})
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}
}

func TestPool_SnapshotIsIndependent(t *testing.T) {
	var p Pool
	p.Add(types.ClipRecord{Path: "a"})
	snap := p.Snapshot()
	p.Add(types.ClipRecord{Path: "b"})
	if len(snap) != 1 || p.Len() != 2 {
		t.Fatalf("snapshot len %d, pool len %d", len(snap), p.Len())
	}
}

func TestParseFootage(t *testing.T) {
	list := `[{"url":"https://x/1.mp4","duration":12,"width":1920,"height":1080,"keyword":"robot"}]`
	obj := `{"videos":[{"url":"https://x/1.mp4","duration":12,"width":1920,"height":1080}]}`
	for name, in := range map[string]string{"list": list, "object": obj} {
		t.Run(name, func(t *testing.T) {
			recs, err := ParseFootage([]byte(in))
			if err != nil {
				t.Fatal(err)
			}
			if len(recs) != 1 || recs[0].Width != 1920 || recs[0].DurationSec != 12 {
				t.Fatalf("unexpected records: %+v", recs)
			}
		})
	}
	for _, bad := range []string{"", "  ", "nope", "[{"} {
		if _, err := ParseFootage([]byte(bad)); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSelect(t *testing.T) {
	recs := []types.FootageRecord{
		{URL: "a", Width: 1920, DurationSec: 15},
		{URL: "b", Width: 1280, DurationSec: 15},
		{URL: "c", Width: 3840, DurationSec: 5},
		{URL: " a ", Width: 1920, DurationSec: 15},
		{URL: "", Width: 1920, DurationSec: 15},
		{URL: "d", Width: 2560, DurationSec: 30},
	}
	got := Select(recs, DefaultFilter())
	if len(got) != 2 || got[0].URL != "a" || got[1].URL != "d" {
		t.Fatalf("unexpected selection: %+v", got)
	}
}

func TestConcatList(t *testing.T) {
	dir := t.TempDir()
	plan := types.CompositionPlan{Clips: []types.ClipRecord{
		{Path: filepath.Join(dir, "clip_1.mp4")},
		{Path: filepath.Join(dir, "it's.mp4")},
	}}
	got, err := ConcatList(plan)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	if !strings.HasPrefix(lines[0], "file '") || !strings.HasSuffix(lines[0], "clip_1.mp4'") {
		t.Fatalf("unexpected line: %s", lines[0])
	}
	if !strings.HasSuffix(lines[1], `it'\''s.mp4'`) {
		t.Fatalf("quote not escaped: %s", lines[1])
	}

	if _, err := ConcatList(types.CompositionPlan{Clips: []types.ClipRecord{{}}}); err == nil {
		t.Fatalf("expected error for empty path")
	}

	listPath := filepath.Join(dir, "concat.txt")
	if err := WriteConcatList(listPath, plan); err != nil {
		t.Fatalf("WriteConcatList: %v", err)
	}
	b, err := os.ReadFile(listPath)
	if err != nil || string(b) != got {
		t.Fatalf("written list differs: %q, %v", b, err)
	}
}
