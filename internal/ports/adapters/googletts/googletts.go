// Package googletts synthesizes narration with the Cloud Text-to-Speech
// REST API.
package googletts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"

	"github.com/forPelevin/autotube/internal/artifact"
)

const (
	defaultEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"
	cloudScope      = "https://www.googleapis.com/auth/cloud-platform"

	// The API rejects inputs above 5000 bytes.
	maxChunkBytes = 4500
)

type Voice struct {
	LanguageCode string
	Name         string
	Gender       string
	SpeakingRate float64
}

func DefaultVoice() Voice {
	return Voice{LanguageCode: "en-US", Name: "en-US-Neural2-J", Gender: "MALE", SpeakingRate: 1.0}
}

type Client struct {
	http     *http.Client
	endpoint string
	voice    Voice
	log      *zap.Logger
}

// New authenticates with Application Default Credentials, which honours
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, voice Voice, log *zap.Logger) (*Client, error) {
	hc, err := google.DefaultClient(ctx, cloudScope)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	return NewWithHTTP(hc, "", voice, log), nil
}

func NewWithHTTP(hc *http.Client, endpoint string, voice Voice, log *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	if voice.Name == "" {
		voice = DefaultVoice()
	}
	return &Client{http: hc, endpoint: endpoint, voice: voice, log: log.Named("tts")}
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
		SsmlGender   string `json:"ssmlGender,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding    string   `json:"audioEncoding"`
		SpeakingRate     float64  `json:"speakingRate,omitempty"`
		EffectsProfileID []string `json:"effectsProfileId,omitempty"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize writes an MP3 narration of text to outPath. Long scripts are
// split on sentence boundaries and the MP3 streams are joined.
func (c *Client) Synthesize(ctx context.Context, text, outPath string) error {
	chunks := Chunks(text, maxChunkBytes)
	if len(chunks) == 0 {
		return fmt.Errorf("synthesize: empty text")
	}
	var audio bytes.Buffer
	for i, chunk := range chunks {
		b, err := c.synthesize(ctx, chunk)
		if err != nil {
			return fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(b)
	}
	if err := artifact.WriteAtomic(outPath, audio.Bytes()); err != nil {
		return err
	}
	c.log.Info("narration synthesized",
		zap.String("voice", c.voice.Name),
		zap.Int("chunks", len(chunks)),
		zap.Int("bytes", audio.Len()))
	return nil
}

func (c *Client) synthesize(ctx context.Context, text string) ([]byte, error) {
	var body synthesizeRequest
	body.Input.Text = text
	body.Voice.LanguageCode = c.voice.LanguageCode
	body.Voice.Name = c.voice.Name
	body.Voice.SsmlGender = c.voice.Gender
	body.AudioConfig.AudioEncoding = "MP3"
	body.AudioConfig.SpeakingRate = c.voice.SpeakingRate
	body.AudioConfig.EffectsProfileID = []string{"headphone-class-device"}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var sr synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(sr.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio content")
	}
	return audio, nil
}

// Chunks splits text into pieces of at most maxBytes, breaking after
// sentence terminators where possible and between words otherwise. A
// single word longer than maxBytes is cut into pieces.
func Chunks(text string, maxBytes int) []string {
	var words []string
	for _, w := range strings.Fields(text) {
		words = append(words, splitToken(w, maxBytes)...)
	}
	var out []string
	var cur, sentence strings.Builder
	flush := func(b *strings.Builder) {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	appendTo := func(b *strings.Builder, w string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}

	for _, w := range words {
		if sentence.Len()+len(w)+1 > maxBytes {
			// A single sentence longer than the limit splits between words.
			flush(&cur)
			flush(&sentence)
		}
		appendTo(&sentence, w)
		if !strings.ContainsAny(w[len(w)-1:], ".!?") {
			continue
		}
		if cur.Len()+sentence.Len()+1 > maxBytes {
			flush(&cur)
		}
		appendTo(&cur, sentence.String())
		sentence.Reset()
	}
	if sentence.Len() > 0 {
		if cur.Len()+sentence.Len()+1 > maxBytes {
			flush(&cur)
		}
		appendTo(&cur, sentence.String())
	}
	flush(&cur)
	return out
}

// splitToken cuts a word longer than maxBytes at rune boundaries.
func splitToken(w string, maxBytes int) []string {
	if len(w) <= maxBytes || maxBytes < utf8.UTFMax {
		return []string{w}
	}
	var out []string
	for len(w) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(w[cut]) {
			cut--
		}
		out = append(out, w[:cut])
		w = w[cut:]
	}
	return append(out, w)
}
