package inventory

import (
	"errors"
	"fmt"

	"github.com/forPelevin/autotube/internal/types"
)

var ErrInsufficientInventory = errors.New("insufficient inventory")

// Assemble returns exactly targetCount clips. A pool at least that large is
// cut to its first targetCount entries; a smaller pool is kept whole and
// then repeated from its first entry onward until the count is reached.
func Assemble(pool []types.ClipRecord, targetCount int) ([]types.ClipRecord, error) {
	if targetCount <= 0 {
		return nil, fmt.Errorf("target count must be > 0, got %d", targetCount)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: pool is empty", ErrInsufficientInventory)
	}

	out := make([]types.ClipRecord, 0, targetCount)
	if len(pool) >= targetCount {
		return append(out, pool[:targetCount]...), nil
	}
	out = append(out, pool...)
	for i := 0; len(out) < targetCount; i++ {
		out = append(out, pool[i%len(pool)])
	}
	return out, nil
}

type PlanOptions struct {
	TargetCount int
	// MinDistinct is the fewest distinct clips a run accepts before
	// repetition; below it the run is aborted.
	MinDistinct int
}

// Plan assembles the pool snapshot and totals the result.
func Plan(pool []types.ClipRecord, opt PlanOptions) (types.CompositionPlan, error) {
	minDistinct := opt.MinDistinct
	if minDistinct <= 0 {
		minDistinct = 1
	}
	if len(pool) < minDistinct {
		return types.CompositionPlan{}, fmt.Errorf("%w: %d clips available, %d required", ErrInsufficientInventory, len(pool), minDistinct)
	}

	clips, err := Assemble(pool, opt.TargetCount)
	if err != nil {
		return types.CompositionPlan{}, err
	}
	plan := types.CompositionPlan{
		Clips:    clips,
		Distinct: min(len(pool), opt.TargetCount),
		Repeated: max(0, opt.TargetCount-len(pool)),
	}
	for _, c := range clips {
		plan.TotalSec += c.DurationSec
	}
	return plan, nil
}

// Short reports whether the plan falls below its target length. Such a plan
// is still usable: the merge stretches video to the narration.
func Short(plan types.CompositionPlan, targetSec float64) bool {
	return targetSec > 0 && plan.TotalSec < targetSec
}
