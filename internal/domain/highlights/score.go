package highlights

import (
	"regexp"
	"strings"
)

var (
	reFigure  = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*(?:%|percent|billion|million|thousand|times)?`)
	reOpener  = regexp.MustCompile(`(?i)\b(imagine|what\s+if|picture\s+this|here'?s\s+why|secret|surprising|nobody|never|the\s+truth)\b`)
	reExplain = regexp.MustCompile(`(?i)\b(because|which\s+means|that'?s\s+why|the\s+reason|for\s+example|studies|researchers|scientists)\b`)
)

// openingWords is how much of a window counts as its first impression.
const openingWords = 15

// Scores rates a narration window as a standalone short. Each part is in
// [0, 10].
type Scores struct {
	Hook    float64 // does the opening grab attention
	Info    float64 // figures and explanations per 100 words
	Closure float64 // does it end on a finished sentence
}

func (s Scores) Total() float64 { return s.Hook + s.Info + s.Closure }

func Score(words []string) Scores {
	if len(words) == 0 {
		return Scores{}
	}
	text := strings.Join(words, " ")
	opening := strings.Join(head(words, openingWords), " ")

	var s Scores
	s.Hook = 1.5 * float64(len(reOpener.FindAllStringIndex(opening, -1)))
	if strings.Contains(opening, "?") {
		s.Hook += 2
	}
	if reFigure.MatchString(opening) {
		s.Hook++
	}

	per100 := 100 / float64(len(words))
	s.Info = per100 * (0.8*float64(len(reFigure.FindAllStringIndex(text, -1))) +
		float64(len(reExplain.FindAllStringIndex(text, -1))))

	last := words[len(words)-1]
	if strings.ContainsAny(last[len(last)-1:], ".!?") {
		s.Closure = 2
	}
	return Scores{Hook: clamp(s.Hook), Info: clamp(s.Info), Closure: s.Closure}
}

func clamp(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 10:
		return 10
	}
	return x
}
