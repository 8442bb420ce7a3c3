package inventory

import "github.com/forPelevin/autotube/internal/types"

// Pool collects clips as they are ingested. Records are only appended;
// consumers work on a Snapshot.
type Pool struct {
	clips []types.ClipRecord
}

func (p *Pool) Add(c types.ClipRecord) { p.clips = append(p.clips, c) }

func (p *Pool) Len() int { return len(p.clips) }

// Snapshot returns a copy that later Adds do not affect.
func (p *Pool) Snapshot() []types.ClipRecord {
	out := make([]types.ClipRecord, len(p.clips))
	copy(out, p.clips)
	return out
}
