package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forPelevin/autotube/internal/types"
)

const (
	defaultBaseURL = "https://api.pexels.com"
	perKeyword     = 2
	maxPage        = 5
)

var styleModifiers = []string{
	"cinematic", "futuristic", "modern", "professional",
	"tech", "innovative", "digital", "advanced",
}

type Client struct {
	key     string
	baseURL string
	http    *http.Client
	log     *zap.Logger

	// Intn picks a style modifier and a result page. Tests pin it.
	Intn func(n int) int

	MinWidth    int
	MinDuration float64
}

func New(apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		key:         apiKey,
		baseURL:     defaultBaseURL,
		http:        &http.Client{Timeout: 10 * time.Second},
		log:         log.Named("pexels"),
		Intn:        rand.IntN,
		MinWidth:    1920,
		MinDuration: 10,
	}
}

// WithBaseURL points the client at another host, mainly for tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

type searchResponse struct {
	Videos []video `json:"videos"`
}

type video struct {
	Duration   float64     `json:"duration"`
	VideoFiles []videoFile `json:"video_files"`
}

type videoFile struct {
	Link    string `json:"link"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quality string `json:"quality"`
}

// Search runs one styled landscape query per keyword and keeps at most two
// HD hits per keyword until limit records are found. A second, unstyled
// pass tops up when the first comes back short. Per-keyword failures are
// logged and skipped.
func (c *Client) Search(ctx context.Context, keywords []string, limit int) ([]types.FootageRecord, error) {
	if c.key == "" {
		return nil, fmt.Errorf("pexels: PEXELS_API_KEY is not set")
	}
	if limit <= 0 {
		return nil, nil
	}
	var out []types.FootageRecord
	seen := map[string]struct{}{}
	add := func(recs []types.FootageRecord) {
		for _, r := range recs {
			if len(out) >= limit {
				return
			}
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			out = append(out, r)
		}
	}

	for _, kw := range keywords {
		if len(out) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		style := styleModifiers[c.Intn(len(styleModifiers))]
		recs, err := c.query(ctx, kw, style)
		if err != nil {
			c.log.Warn("search failed", zap.String("keyword", kw), zap.Error(err))
			continue
		}
		add(recs)
	}
	for _, kw := range keywords {
		if len(out) >= limit {
			break
		}
		recs, err := c.query(ctx, kw, "")
		if err != nil {
			c.log.Warn("search failed", zap.String("keyword", kw), zap.Error(err))
			continue
		}
		add(recs)
	}
	c.log.Info("footage found", zap.Int("count", len(out)), zap.Int("keywords", len(keywords)))
	return out, nil
}

func (c *Client) query(ctx context.Context, keyword, style string) ([]types.FootageRecord, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	q := keyword
	if style != "" {
		q = keyword + " " + style
	}
	page := 1 + c.Intn(maxPage)
	params := url.Values{}
	params.Set("query", q)
	params.Set("per_page", "3")
	params.Set("orientation", "landscape")
	params.Set("size", "large")
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.key)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if style == "" {
		style = "standard"
	}
	var out []types.FootageRecord
	for _, v := range sr.Videos {
		if len(out) >= perKeyword {
			break
		}
		if v.Duration < c.MinDuration {
			continue
		}
		f, ok := c.hdFile(v.VideoFiles)
		if !ok {
			continue
		}
		quality := f.Quality
		if quality == "" {
			quality = "hd"
		}
		out = append(out, types.FootageRecord{
			URL:         f.Link,
			Keyword:     keyword,
			Style:       style,
			Page:        page,
			DurationSec: v.Duration,
			Width:       f.Width,
			Height:      f.Height,
			Quality:     quality,
		})
	}
	return out, nil
}

func (c *Client) hdFile(files []videoFile) (videoFile, bool) {
	for _, f := range files {
		if f.Width >= c.MinWidth && strings.TrimSpace(f.Link) != "" {
			return f, true
		}
	}
	return videoFile{}, false
}
