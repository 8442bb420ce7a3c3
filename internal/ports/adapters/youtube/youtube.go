// Package youtube publishes rendered videos through the YouTube Data API.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	neturl "net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/forPelevin/autotube/internal/types"
)

const (
	defaultUploadBase = "https://www.googleapis.com/upload/youtube/v3"
	defaultAPIBase    = "https://www.googleapis.com/youtube/v3"
	uploadScope       = "https://www.googleapis.com/auth/youtube.upload"
	forceSSLScope     = "https://www.googleapis.com/auth/youtube.force-ssl"

	categoryScienceTech = "28"
	maxTitleRunes       = 100
	maxTags             = 30
	maxThumbnailBytes   = 2 << 20
)

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// Privacy is public, unlisted or private. Empty means private.
	Privacy    string
	PlaylistID string
}

func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "" {
		return fmt.Errorf("youtube: YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET and YOUTUBE_REFRESH_TOKEN are required")
	}
	switch c.Privacy {
	case "", "public", "unlisted", "private":
		return nil
	default:
		return fmt.Errorf("youtube: invalid privacy %q", c.Privacy)
	}
}

type Client struct {
	http       *http.Client
	cfg        Config
	uploadBase string
	apiBase    string
	log        *zap.Logger
}

// New builds an uploader that exchanges the stored refresh token for access
// tokens as needed.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{uploadScope, forceSSLScope},
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = 30 * time.Minute
	return NewWithHTTP(hc, cfg, "", "", log), nil
}

func NewWithHTTP(hc *http.Client, cfg Config, uploadBase, apiBase string, log *zap.Logger) *Client {
	if uploadBase == "" {
		uploadBase = defaultUploadBase
	}
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:       hc,
		cfg:        cfg,
		uploadBase: strings.TrimRight(uploadBase, "/"),
		apiBase:    strings.TrimRight(apiBase, "/"),
		log:        log.Named("youtube"),
	}
}

type videoResource struct {
	ID      string `json:"id,omitempty"`
	Snippet struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Tags        []string `json:"tags,omitempty"`
		CategoryID  string   `json:"categoryId"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus           string `json:"privacyStatus"`
		SelfDeclaredMadeForKids bool   `json:"selfDeclaredMadeForKids"`
	} `json:"status"`
}

// Upload publishes u.Path and returns the watch URL. Captions, thumbnail
// and playlist placement are best effort once the video itself is accepted.
func (c *Client) Upload(ctx context.Context, u types.Upload) (string, error) {
	f, err := os.Open(u.Path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return "", err
	}

	meta := metadata(u, c.cfg.Privacy)
	location, err := c.startSession(ctx, meta, fi.Size())
	if err != nil {
		return "", fmt.Errorf("start upload: %w", err)
	}
	id, err := c.sendMedia(ctx, location, f, fi.Size())
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	c.log.Info("video uploaded", zap.String("id", id), zap.String("title", meta.Snippet.Title), zap.Bool("short", u.Short))

	if u.Captions != "" {
		if err := c.insertCaptions(ctx, id, u.Captions); err != nil {
			c.log.Warn("caption upload failed", zap.String("id", id), zap.Error(err))
		}
	}
	if u.Thumbnail != "" {
		if err := c.setThumbnail(ctx, id, u.Thumbnail); err != nil {
			c.log.Warn("thumbnail upload failed", zap.String("id", id), zap.Error(err))
		}
	}
	if c.cfg.PlaylistID != "" {
		if err := c.addToPlaylist(ctx, id); err != nil {
			c.log.Warn("playlist insert failed", zap.String("id", id), zap.Error(err))
		}
	}
	if u.Short {
		return "https://youtube.com/shorts/" + id, nil
	}
	return "https://www.youtube.com/watch?v=" + id, nil
}

// metadata builds the video resource. Shorts carry the #Shorts marker in
// both the description and the tags.
func metadata(u types.Upload, privacy string) videoResource {
	var v videoResource
	v.Snippet.Title = clip(strings.TrimSpace(u.Title), maxTitleRunes)
	v.Snippet.Description = strings.TrimSpace(u.Description)
	v.Snippet.CategoryID = categoryScienceTech
	tags := append([]string(nil), u.Tags...)
	if u.Short {
		if !strings.Contains(v.Snippet.Description, "#Shorts") {
			v.Snippet.Description = strings.TrimSpace(v.Snippet.Description + "\n\n#Shorts")
		}
		tags = append([]string{"Shorts"}, tags...)
	}
	v.Snippet.Tags = dedupe(tags, maxTags)
	if privacy == "" {
		privacy = "private"
	}
	v.Status.PrivacyStatus = privacy
	return v
}

func (c *Client) startSession(ctx context.Context, meta videoResource, size int64) (string, error) {
	body, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	url := c.uploadBase + "/videos?uploadType=resumable&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Type", "video/mp4")
	req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(size, 10))
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", fmt.Errorf("no upload session location")
	}
	return loc, nil
}

func (c *Client) sendMedia(ctx context.Context, location string, r io.Reader, size int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, location, r)
	if err != nil {
		return "", err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "video/mp4")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError(resp)
	}
	var out videoResource
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("upload response has no video id")
	}
	return out.ID, nil
}

func (c *Client) insertCaptions(ctx context.Context, videoID, srtPath string) error {
	srt, err := os.ReadFile(srtPath)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(map[string]any{
		"snippet": map[string]any{"videoId": videoID, "language": "en", "name": "English"},
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return err
	}
	part.Write(meta)
	part, err = mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/octet-stream"}})
	if err != nil {
		return err
	}
	part.Write(srt)
	if err := mw.Close(); err != nil {
		return err
	}

	url := c.uploadBase + "/captions?uploadType=multipart&part=snippet"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())
	return c.doJSON(req)
}

func (c *Client) setThumbnail(ctx context.Context, videoID, path string) error {
	img, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(img) > maxThumbnailBytes {
		return fmt.Errorf("thumbnail %s is %d bytes, limit is %d", path, len(img), maxThumbnailBytes)
	}
	ctype := "image/jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		ctype = "image/png"
	}
	url := c.uploadBase + "/thumbnails/set?videoId=" + neturl.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(img))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", ctype)
	return c.doJSON(req)
}

func (c *Client) addToPlaylist(ctx context.Context, videoID string) error {
	body, err := json.Marshal(map[string]any{
		"snippet": map[string]any{
			"playlistId": c.cfg.PlaylistID,
			"resourceId": map[string]string{"kind": "youtube#video", "videoId": videoID},
		},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/playlistItems?part=snippet", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req)
}

func (c *Client) doJSON(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func dedupe(tags []string, limit int) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		k := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
