//go:build integration

package itest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const modulePath = "github.com/forPelevin/autotube"

// moduleRoot walks up from the working directory to the go.mod that
// declares this module.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		b, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil && bytes.Contains(b, []byte("module "+modulePath)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod for " + modulePath + " not found")
		}
		dir = parent
	}
}

type mediaInfo struct {
	Sec    float64
	Width  int
	Height int
	Audio  bool
}

func probeMedia(path string) (mediaInfo, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration:stream=codec_type,width,height",
		"-of", "json",
		path,
	).CombinedOutput()
	if err != nil {
		return mediaInfo{}, fmt.Errorf("ffprobe %s: %w\n%s", path, err, out)
	}
	var raw struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return mediaInfo{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	var info mediaInfo
	info.Sec, err = strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64)
	if err != nil {
		return mediaInfo{}, fmt.Errorf("parse duration %q: %w", raw.Format.Duration, err)
	}
	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			info.Width, info.Height = s.Width, s.Height
		case "audio":
			info.Audio = true
		}
	}
	return info, nil
}
