// Package imagegen renders video thumbnails with an OpenAI image model.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/forPelevin/autotube/internal/artifact"
	"github.com/forPelevin/autotube/internal/ports"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/"
	defaultModel   = "dall-e-3"
	// 16:9 is the closest DALL-E 3 size to a YouTube thumbnail.
	defaultSize    = "1792x1024"
	defaultQuality = "hd"
	requestTimeout = 2 * time.Minute
)

// Prompter writes the image prompt from the video's title and script.
type Prompter interface {
	ThumbnailPrompt(ctx context.Context, title, script string) (string, error)
}

type Options struct {
	BaseURL string
	Model   string
	Size    string
	Quality string
	Logger  *zap.Logger
}

type Generator struct {
	client   openai.Client
	key      string
	prompter Prompter
	fetch    ports.Fetcher
	opt      Options
	log      *zap.Logger
}

func New(apiKey string, prompter Prompter, fetch ports.Fetcher, opt Options) *Generator {
	if opt.BaseURL == "" {
		opt.BaseURL = defaultBaseURL
	}
	if opt.Model == "" {
		opt.Model = defaultModel
	}
	if opt.Size == "" {
		opt.Size = defaultSize
	}
	if opt.Quality == "" {
		opt.Quality = defaultQuality
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(opt.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: 3 * time.Minute}),
		option.WithMaxRetries(1),
	)
	return &Generator{client: client, key: apiKey, prompter: prompter, fetch: fetch, opt: opt, log: log.Named("thumbnail")}
}

// Thumbnail asks the prompter for an image prompt, renders it and stores the
// image at outPath. Hosted results are downloaded through the fetcher.
func (g *Generator) Thumbnail(ctx context.Context, title, script, outPath string) error {
	prompt, err := g.prompter.ThumbnailPrompt(ctx, title, script)
	if err != nil {
		return err
	}
	g.log.Info("generating thumbnail", zap.String("model", g.opt.Model), zap.String("prompt", truncate(prompt, 100)))

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	resp, err := g.client.Images.Generate(reqCtx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(g.opt.Model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(g.opt.Size),
		Quality:        openai.ImageGenerateParamsQuality(g.opt.Quality),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return fmt.Errorf("generate image: %s", g.redact(err.Error()))
	}
	if len(resp.Data) == 0 {
		return errors.New("generate image: no image returned")
	}

	img := resp.Data[0]
	switch {
	case img.URL != "":
		if err := g.fetch.Fetch(ctx, img.URL, outPath); err != nil {
			return fmt.Errorf("download thumbnail: %w", err)
		}
	case img.B64JSON != "":
		b, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return fmt.Errorf("decode thumbnail: %w", err)
		}
		if err := artifact.WriteAtomic(outPath, b); err != nil {
			return err
		}
	default:
		return errors.New("generate image: response has neither url nor data")
	}
	g.log.Info("thumbnail saved", zap.String("path", outPath))
	return nil
}

func (g *Generator) redact(s string) string {
	if g.key == "" {
		return s
	}
	return strings.ReplaceAll(s, g.key, "[REDACTED]")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
