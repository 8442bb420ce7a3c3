package shorts

import (
	"fmt"
	"time"
)

// Bounds is the allowed duration range of a short, in seconds.
type Bounds struct {
	Min float64
	Max float64
}

func DefaultBounds() Bounds { return Bounds{Min: 30, Max: 60} }

func BoundsFrom(minClip, maxClip time.Duration) Bounds {
	return Bounds{Min: minClip.Seconds(), Max: maxClip.Seconds()}
}

func (b Bounds) Validate() error {
	if b.Min <= 0 {
		return fmt.Errorf("min short duration must be > 0")
	}
	if b.Max < b.Min {
		return fmt.Errorf("max short duration must be >= min")
	}
	return nil
}

// Clamp extends end to start+minDur when the span is too short, or pulls it
// in to start+maxDur when it is too long. Start never moves.
func Clamp(start, end, minDur, maxDur float64) (float64, float64) {
	switch d := end - start; {
	case d < minDur:
		end = start + minDur
	case d > maxDur:
		end = start + maxDur
	}
	return start, end
}

func (b Bounds) Clamp(start, end float64) (float64, float64) {
	return Clamp(start, end, b.Min, b.Max)
}
