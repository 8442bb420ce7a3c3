package usecase

import (
	"fmt"

	"github.com/forPelevin/autotube/internal/artifact"
)

const (
	StageScript    = "script"
	StageAudio     = "audio"
	StageFootage   = "footage"
	StageClips     = "clips"
	StageCompose   = "compose"
	StageMerge     = "merge"
	StageSubtitles = "subtitles"
	StageThumbnail = "thumbnail"
	StageShorts    = "shorts"
	StageUpload    = "upload"
)

// StageError attributes a fatal error to the stage and, when known, the
// artifact it was producing or consuming.
type StageError struct {
	Stage    string
	Artifact string
	Err      error
}

func (e *StageError) Error() string {
	if e.Artifact == "" {
		return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage %q: artifact %q: %v", e.Stage, e.Artifact, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// fail removes the partial outputs of a failed stage and wraps err.
func fail(stage, art string, err error, partial ...string) error {
	artifact.Discard(partial...)
	return &StageError{Stage: stage, Artifact: art, Err: err}
}
