// Package httpfetch downloads source footage over HTTP.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/forPelevin/autotube/internal/retry"
)

// DefaultMinBytes is the smallest body accepted as a real video; anything
// shorter is an error page or a truncated transfer.
const DefaultMinBytes = 100 * 1024

var ErrTooSmall = errors.New("download too small")

type Fetcher struct {
	http     *http.Client
	policy   retry.Policy
	minBytes int64
}

func New(policy retry.Policy, minBytes int64, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	if minBytes <= 0 {
		minBytes = DefaultMinBytes
	}
	if policy.OnRetry == nil {
		l := log.Named("fetch")
		policy.OnRetry = func(attempt int, err error) {
			l.Warn("download attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}
	}
	return &Fetcher{
		http:     &http.Client{Timeout: 2 * time.Minute},
		policy:   policy,
		minBytes: minBytes,
	}
}

// Fetch downloads url to outPath. A failed or undersized attempt leaves
// nothing at outPath.
func (f *Fetcher) Fetch(ctx context.Context, url, outPath string) error {
	_, err := retry.Do(ctx, f.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.once(ctx, url, outPath)
	})
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	return nil
}

func (f *Fetcher) once(ctx context.Context, url, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("status %d", resp.StatusCode)
	default:
		return retry.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return retry.Permanent(err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outPath)+"-*.part")
	if err != nil {
		return retry.Permanent(err)
	}
	tmpPath := tmp.Name()
	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(tmpPath)
		return copyErr
	}
	if n < f.minBytes {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %d bytes", ErrTooSmall, n)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return retry.Permanent(err)
	}
	return nil
}
