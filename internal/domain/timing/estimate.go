package timing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// DefaultWordsPerSecond is the canonical narration rate (150 wpm).
const DefaultWordsPerSecond = 2.5

var ErrInvalidDuration = errors.New("invalid duration")

// Estimator maps a rune offset in the narration to seconds of playback.
type Estimator interface {
	Estimate(offset int) (float64, error)
}

// Proportional returns offset/totalChars of totalSec. Offsets are clamped to
// [0, totalChars], so the end of the text maps to totalSec exactly.
func Proportional(offset, totalChars int, totalSec float64) (float64, error) {
	if err := CheckDuration("total", totalSec); err != nil {
		return 0, err
	}
	if totalChars <= 0 {
		return 0, fmt.Errorf("total chars must be > 0, got %d", totalChars)
	}
	if offset <= 0 {
		return 0, nil
	}
	if offset >= totalChars {
		return totalSec, nil
	}
	return float64(offset) / float64(totalChars) * totalSec, nil
}

// FixedRate returns the number of words before offset divided by the
// speaking rate. It is used before any audio exists.
func FixedRate(text string, offset int, wordsPerSec float64) (float64, error) {
	if err := CheckDuration("words per second", wordsPerSec); err != nil {
		return 0, err
	}
	if offset <= 0 {
		return 0, nil
	}
	return float64(WordsBefore(text, offset)) / wordsPerSec, nil
}

// WordsBefore counts whitespace-delimited words that start before the rune
// offset.
func WordsBefore(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	n := 0
	inWord := false
	i := 0
	for _, r := range text {
		if i >= offset {
			break
		}
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			n++
		}
		i++
	}
	return n
}

// CheckDuration rejects non-positive and non-finite values.
func CheckDuration(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvalidDuration, name, v)
	}
	return nil
}

type ProportionalEstimator struct {
	TotalChars int
	TotalSec   float64
}

func NewProportional(text string, totalSec float64) ProportionalEstimator {
	return ProportionalEstimator{TotalChars: len([]rune(text)), TotalSec: totalSec}
}

func (e ProportionalEstimator) Estimate(offset int) (float64, error) {
	return Proportional(offset, e.TotalChars, e.TotalSec)
}

type FixedRateEstimator struct {
	Text        string
	WordsPerSec float64
}

func (e FixedRateEstimator) Estimate(offset int) (float64, error) {
	return FixedRate(e.Text, offset, e.WordsPerSec)
}

// OffsetAt is the inverse of the proportional mapping: the rune offset that
// plays at sec, snapped forward to the next word start.
func OffsetAt(text string, sec, totalSec float64) int {
	runes := []rune(text)
	if sec <= 0 || totalSec <= 0 || len(runes) == 0 {
		return 0
	}
	if sec >= totalSec {
		return len(runes)
	}
	off := int(math.Round(sec / totalSec * float64(len(runes))))
	if off > 0 && off < len(runes) && !unicode.IsSpace(runes[off-1]) {
		for off < len(runes) && !unicode.IsSpace(runes[off]) {
			off++
		}
	}
	return off
}

// Slice returns the trimmed text between two rune offsets.
func Slice(text string, from, to int) string {
	runes := []rune(text)
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	if from >= to {
		return ""
	}
	return strings.TrimSpace(string(runes[from:to]))
}
