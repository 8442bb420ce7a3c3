package types

import "time"

type Script struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Text        string   `json:"text"`
}

// ShortPick is a text-level selection of a short: the words it starts and
// ends with, as returned by the segment picker.
type ShortPick struct {
	ID        int    `json:"id"`
	StartText string `json:"start_text"`
	EndText   string `json:"end_text"`
	Title     string `json:"title"`
	WordCount int    `json:"word_count"`
}

type ShortSegment struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	StartSec    float64 `json:"start"`
	EndSec      float64 `json:"end"`
	DurationSec float64 `json:"duration"`
}

type SegmentManifest struct {
	Segments []ShortSegment `json:"segments"`
}

type SubtitleCue struct {
	Index    int
	StartSec float64
	EndSec   float64
	Text     string
}

// FootageRecord is one stock-footage search hit.
type FootageRecord struct {
	URL         string  `json:"url"`
	Keyword     string  `json:"keyword,omitempty"`
	Style       string  `json:"style,omitempty"`
	Page        int     `json:"page,omitempty"`
	DurationSec float64 `json:"duration"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Quality     string  `json:"quality,omitempty"`
}

// ClipRecord is one downloaded and normalized source clip.
type ClipRecord struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration"`
}

type CompositionPlan struct {
	Clips    []ClipRecord `json:"clips"`
	TotalSec float64      `json:"total_sec"`
	Distinct int          `json:"distinct"`
	Repeated int          `json:"repeated"`
}

type SyncAction string

const (
	ActionAccept  SyncAction = "accept"
	ActionStretch SyncAction = "stretch"
	ActionTrim    SyncAction = "trim"
)

type DurationReport struct {
	VideoSec float64    `json:"video_sec"`
	AudioSec float64    `json:"audio_sec"`
	DriftSec float64    `json:"drift_sec"`
	Factor   float64    `json:"factor"`
	Action   SyncAction `json:"action"`
}

type Upload struct {
	Path        string
	Title       string
	Description string
	Tags        []string
	Captions    string
	// Thumbnail is an optional JPEG or PNG set as the custom thumbnail.
	Thumbnail string
	Short     bool
}

type Manifest struct {
	RunID     string          `json:"run_id"`
	CreatedAt time.Time       `json:"created_at"`
	Title     string          `json:"title"`
	Script    string          `json:"script"`
	Audio     string          `json:"audio"`
	AudioSec  float64         `json:"audio_sec"`
	Video     string          `json:"video"`
	Subtitles string          `json:"subtitles"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Plan      CompositionPlan `json:"plan"`
	Report    DurationReport  `json:"report"`
	Shorts    []ManifestShort `json:"shorts"`
	Uploads   []string        `json:"uploads,omitempty"`
}

type ManifestShort struct {
	ShortSegment
	File      string `json:"file"`
	Subtitles string `json:"subtitles"`
	Text      string `json:"text"`
}
