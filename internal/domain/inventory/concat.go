package inventory

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forPelevin/autotube/internal/artifact"
	"github.com/forPelevin/autotube/internal/types"
)

// ConcatList renders the plan as an ffmpeg concat demuxer script with
// absolute paths.
func ConcatList(plan types.CompositionPlan) (string, error) {
	var b strings.Builder
	for i, c := range plan.Clips {
		if c.Path == "" {
			return "", fmt.Errorf("concat list: clip %d has no path", i)
		}
		abs, err := filepath.Abs(c.Path)
		if err != nil {
			return "", fmt.Errorf("concat list: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", quoteConcat(filepath.ToSlash(abs)))
	}
	return b.String(), nil
}

// WriteConcatList renders plan and writes it atomically to path.
func WriteConcatList(path string, plan types.CompositionPlan) error {
	list, err := ConcatList(plan)
	if err != nil {
		return err
	}
	return artifact.WriteAtomic(path, []byte(list))
}

// quoteConcat escapes single quotes the way the concat demuxer expects:
// close the quote, emit an escaped quote, reopen.
func quoteConcat(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}
