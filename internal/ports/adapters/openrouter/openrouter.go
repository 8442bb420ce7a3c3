package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/forPelevin/autotube/internal/domain/highlights"
	"github.com/forPelevin/autotube/internal/types"
)

const requestTimeout = 3 * time.Minute

// Options tune the deterministic fallback used when the model returns too
// few usable shorts.
type Options struct {
	WordsPerSec float64
	MinShortSec float64
	MaxShortSec float64
	Logger      *zap.Logger
}

type Adapter struct {
	key    string
	model  string
	client openai.Client
	opt    Options
	log    *zap.Logger
}

func New(apiKey, model, baseURL string, opt Options) *Adapter {
	if model == "" {
		model = "openai/gpt-4o-mini"
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(apiRoot(baseURL)),
		option.WithHTTPClient(&http.Client{Timeout: 5 * time.Minute}),
		option.WithMaxRetries(2),
	)
	return &Adapter{key: apiKey, model: model, client: client, opt: opt, log: log.Named("llm")}
}

func (a *Adapter) WriteScript(ctx context.Context, topic string) (types.Script, error) {
	var out scriptResponse
	if err := a.complete(ctx, "video_script", scriptSystemPrompt, buildScriptPrompt(topic), 0.8, scriptResponseSchema, &out); err != nil {
		return types.Script{}, fmt.Errorf("write script: %w", err)
	}
	text := strings.TrimSpace(out.Script)
	if text == "" {
		return types.Script{}, errors.New("write script: model returned an empty script")
	}
	title := strings.TrimSpace(out.Title)
	if title == "" {
		title = firstWords(text, 8)
	}
	a.log.Info("script generated", zap.String("title", title), zap.Int("words", len(strings.Fields(text))))
	return types.Script{
		Title:       title,
		Description: strings.TrimSpace(out.Description),
		Tags:        cleanList(out.Tags, 15),
		Text:        text,
	}, nil
}

func (a *Adapter) Keywords(ctx context.Context, script string) ([]string, error) {
	var out keywordsResponse
	if err := a.complete(ctx, "footage_keywords", keywordSystemPrompt, buildKeywordPrompt(script), 0.7, keywordsResponseSchema, &out); err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}
	kws := cleanList(out.Keywords, 12)
	if len(kws) == 0 {
		return nil, errors.New("extract keywords: model returned no keywords")
	}
	return kws, nil
}

// ThumbnailPrompt turns the script into a prompt for the image model.
func (a *Adapter) ThumbnailPrompt(ctx context.Context, title, script string) (string, error) {
	var out thumbnailResponse
	if err := a.complete(ctx, "thumbnail_prompt", thumbSystemPrompt, buildThumbnailPrompt(title, script), 0.8, thumbnailResponseSchema, &out); err != nil {
		return "", fmt.Errorf("thumbnail prompt: %w", err)
	}
	p := strings.TrimSpace(out.Prompt)
	if p == "" {
		return "", errors.New("thumbnail prompt: model returned an empty prompt")
	}
	return p, nil
}

// PickShorts asks the model for n self-contained segments. Transport
// errors fail; malformed or short answers are topped up from the heuristic
// picker so the shorts stage always has n candidates when the script allows.
func (a *Adapter) PickShorts(ctx context.Context, script string, n int) ([]types.ShortPick, error) {
	if n <= 0 || strings.TrimSpace(script) == "" {
		return nil, nil
	}
	var out shortsResponse
	err := a.complete(ctx, "shorts_segments", shortsSystemPrompt, buildShortsPrompt(script, n, a.opt.MinShortSec, a.opt.MaxShortSec), 0.7, shortsResponseSchema, &out)
	if err != nil && !errors.Is(err, errBadContent) {
		return nil, fmt.Errorf("pick shorts: %w", err)
	}
	if err != nil {
		a.log.Warn("unusable shorts answer, using heuristic picks", zap.Error(err))
	}

	picks := make([]types.ShortPick, 0, n)
	for _, p := range out.Shorts {
		p.StartText = strings.TrimSpace(p.StartText)
		p.EndText = strings.TrimSpace(p.EndText)
		p.Title = strings.TrimSpace(p.Title)
		if p.StartText == "" {
			continue
		}
		picks = append(picks, p)
		if len(picks) == n {
			break
		}
	}
	if len(picks) < n {
		a.log.Warn("model returned too few shorts", zap.Int("got", len(picks)), zap.Int("want", n))
		picks = topUp(picks, a.fallback(script, n), n)
	}
	for i := range picks {
		picks[i].ID = i + 1
	}
	return picks, nil
}

func (a *Adapter) fallback(script string, n int) []types.ShortPick {
	wps := a.opt.WordsPerSec
	if wps <= 0 {
		wps = 2.5
	}
	minSec, maxSec := a.opt.MinShortSec, a.opt.MaxShortSec
	if minSec <= 0 {
		minSec = 30
	}
	if maxSec < minSec {
		maxSec = 60
	}
	return highlights.FallbackPicks(script, n, wps, minSec, maxSec)
}

func topUp(picks, extra []types.ShortPick, n int) []types.ShortPick {
	used := make(map[string]struct{}, len(picks))
	for _, p := range picks {
		used[strings.ToLower(p.StartText)] = struct{}{}
	}
	for _, p := range extra {
		if len(picks) >= n {
			break
		}
		if _, dup := used[strings.ToLower(p.StartText)]; dup {
			continue
		}
		picks = append(picks, p)
	}
	return picks
}

var errBadContent = errors.New("unusable model content")

func (a *Adapter) complete(ctx context.Context, name, system, prompt string, temperature float64, schema any, dst any) error {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := a.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("llm timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return errors.New(truncate(redactSecrets(err.Error(), a.key), 400))
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: no choices", errBadContent)
	}
	clean, err := extractJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadContent, err)
	}
	if err := json.Unmarshal([]byte(clean), dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", errBadContent, name, err)
	}
	return nil
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty content")
	}

	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("could not locate JSON object in: %q", truncate(t, 200))
}

func cleanList(in []string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Trim(strings.TrimSpace(s), "#,")
		k := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func firstWords(s string, n int) string {
	w := strings.Fields(s)
	if len(w) > n {
		w = w[:n]
	}
	return strings.Join(w, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
