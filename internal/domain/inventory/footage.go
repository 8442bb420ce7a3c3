package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forPelevin/autotube/internal/types"
)

// ParseFootage reads a footage list. Both a bare JSON array and an object
// with a "videos" array are accepted.
func ParseFootage(b []byte) ([]types.FootageRecord, error) {
	t := bytes.TrimSpace(b)
	if len(t) == 0 {
		return nil, fmt.Errorf("footage list is empty")
	}
	switch t[0] {
	case '[':
		var out []types.FootageRecord
		if err := json.Unmarshal(t, &out); err != nil {
			return nil, fmt.Errorf("parse footage list: %w", err)
		}
		return out, nil
	case '{':
		var wrapped struct {
			Videos []types.FootageRecord `json:"videos"`
		}
		if err := json.Unmarshal(t, &wrapped); err != nil {
			return nil, fmt.Errorf("parse footage object: %w", err)
		}
		return wrapped.Videos, nil
	default:
		return nil, fmt.Errorf("footage list: expected JSON array or object")
	}
}

type Filter struct {
	MinWidth    int
	MinDuration float64
}

func DefaultFilter() Filter { return Filter{MinWidth: 1920, MinDuration: 10} }

// Select keeps usable records in discovery order and drops duplicate URLs.
func Select(recs []types.FootageRecord, f Filter) []types.FootageRecord {
	seen := make(map[string]struct{}, len(recs))
	out := make([]types.FootageRecord, 0, len(recs))
	for _, r := range recs {
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		if r.Width < f.MinWidth {
			continue
		}
		if f.MinDuration > 0 && r.DurationSec < f.MinDuration {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		r.URL = u
		out = append(out, r)
	}
	return out
}
