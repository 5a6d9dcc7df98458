package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrExhausted means every fetch attempt failed.
	ErrExhausted = errors.New("fetch: retries exhausted")
	// ErrContentType means the response type does not match the declared media kind.
	ErrContentType = errors.New("fetch: content type mismatch")
)

// Fetcher downloads remote media over HTTP with a bounded retry policy.
// The underlying http.Client is shared across invocations.
type Fetcher struct {
	client *http.Client
	retry  RetryPolicy
	logger *zap.Logger
}

func NewFetcher(timeout time.Duration, retry RetryPolicy, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		// The timeout bounds each attempt; redirects are followed by default.
		client: &http.Client{Timeout: timeout},
		retry:  retry,
		logger: logger,
	}
}

// fetch downloads the full body, retrying on any failure including
// non-success status codes.
func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, string, error) {
	var body []byte
	var contentType string

	attempt := 0
	err := f.retry.Do(ctx, func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			f.logger.Warn("fetch attempt failed",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			f.logger.Warn("fetch attempt got non-success status",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.String("status", resp.Status),
			)
			return fmt.Errorf("unexpected status %s", resp.Status)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		contentType = resp.Header.Get("Content-Type")
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExhausted, err)
	}
	return body, contentType, nil
}

// FetchImage downloads an image into memory and returns its bytes and the
// declared content type. The type check is a substring match on the
// Content-Type header, not a content-sniffing guarantee.
func (f *Fetcher) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	body, contentType, err := f.fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}
	if !strings.Contains(contentType, "image") {
		return nil, "", fmt.Errorf("%w: expected image, got %q", ErrContentType, contentType)
	}
	return body, contentType, nil
}

// FetchVideo downloads a video to a temporary file and returns its path.
// The caller owns the file and must remove it when done.
func (f *Fetcher) FetchVideo(ctx context.Context, url string) (string, error) {
	body, contentType, err := f.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if !strings.Contains(contentType, "video") {
		return "", fmt.Errorf("%w: expected video, got %q", ErrContentType, contentType)
	}

	tmp, err := os.CreateTemp("", "mediajudge-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create temp video file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp video file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp video file: %w", err)
	}

	f.logger.Debug("video downloaded",
		zap.String("url", url),
		zap.String("path", tmp.Name()),
		zap.Int("bytes", len(body)),
	)
	return tmp.Name(), nil
}
