package highlights

import (
	"sort"
	"strings"

	"github.com/forPelevin/autotube/internal/types"
)

type Candidate struct {
	First int // first sentence index
	Last  int // last sentence index, inclusive
	Words []string
	Score Scores
}

// BuildCandidates slides over the script sentence by sentence and keeps
// every window whose spoken length, at wordsPerSec, falls within
// [minSec, maxSec].
func BuildCandidates(script string, wordsPerSec, minSec, maxSec float64) []Candidate {
	if wordsPerSec <= 0 || maxSec <= 0 || maxSec < minSec {
		return nil
	}
	sents := splitSentences(script)
	minWords := int(minSec * wordsPerSec)
	maxWords := int(maxSec * wordsPerSec)

	var out []Candidate
	for i := range sents {
		var words []string
		for j := i; j < len(sents); j++ {
			words = append(words, sents[j]...)
			if len(words) > maxWords {
				break
			}
			if len(words) < minWords {
				continue
			}
			w := append([]string(nil), words...)
			out = append(out, Candidate{First: i, Last: j, Words: w, Score: Score(w)})
		}
	}
	return out
}

// FallbackPicks chooses up to n non-overlapping windows by score, returned
// in script order. It stands in when the picker model returns too few.
func FallbackPicks(script string, n int, wordsPerSec, minSec, maxSec float64) []types.ShortPick {
	if n <= 0 {
		return nil
	}
	cands := BuildCandidates(script, wordsPerSec, minSec, maxSec)
	sort.SliceStable(cands, func(i, j int) bool {
		s1, s2 := cands[i].Score.Total(), cands[j].Score.Total()
		if s1 == s2 {
			return cands[i].First < cands[j].First
		}
		return s1 > s2
	})

	var chosen []Candidate
	for _, c := range cands {
		if len(chosen) >= n {
			break
		}
		if overlaps(chosen, c) {
			continue
		}
		chosen = append(chosen, c)
	}
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].First < chosen[j].First })

	out := make([]types.ShortPick, 0, len(chosen))
	for i, c := range chosen {
		out = append(out, types.ShortPick{
			ID:        i + 1,
			StartText: strings.Join(head(c.Words, 5), " "),
			EndText:   strings.Join(tail(c.Words, 5), " "),
			Title:     titleFrom(c.Words),
			WordCount: len(c.Words),
		})
	}
	return out
}

func overlaps(chosen []Candidate, c Candidate) bool {
	for _, x := range chosen {
		if c.First <= x.Last && x.First <= c.Last {
			return true
		}
	}
	return false
}

func splitSentences(s string) [][]string {
	var out [][]string
	var cur []string
	for _, w := range strings.Fields(s) {
		cur = append(cur, w)
		if strings.ContainsAny(w[len(w)-1:], ".!?") {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func head(w []string, n int) []string {
	if len(w) < n {
		return w
	}
	return w[:n]
}

func tail(w []string, n int) []string {
	if len(w) < n {
		return w
	}
	return w[len(w)-n:]
}

func titleFrom(words []string) string {
	t := strings.Join(head(words, 7), " ")
	return strings.TrimRight(t, ".,;:!")
}
