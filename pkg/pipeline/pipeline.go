package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"mediajudge/pkg/frames"
	"mediajudge/pkg/judge"
)

// MediaKind is the declared type of a media reference.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// Request is one evaluation invocation. Empty prompts fall back to the
// configured defaults.
type Request struct {
	URL          string
	Kind         MediaKind
	SystemPrompt string
	UserPrompt   string
}

// Fetcher acquires remote media bytes.
type Fetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
	FetchVideo(ctx context.Context, url string) (string, error)
}

// Sampler turns a video file, or a single still image, into encoded frames.
type Sampler interface {
	Sample(ctx context.Context, videoPath string) ([]frames.EncodedFrame, error)
	EncodeImage(data []byte) (frames.EncodedFrame, error)
}

// Judge dispatches an assembled request to the judging model.
type Judge interface {
	Judge(ctx context.Context, req *judge.Request) (string, error)
}

// Prompts are the default judging prompts applied when a request does not
// carry its own.
type Prompts struct {
	System string
	User   string
}

// Pipeline runs acquire → sample → assemble → dispatch for one media
// reference. Invocations share nothing beyond the injected clients; decode
// work takes a bounded worker slot so it cannot starve the network-bound
// stages of concurrent invocations.
type Pipeline struct {
	fetcher Fetcher
	sampler Sampler
	judge   Judge
	prompts Prompts
	slots   chan struct{}
	logger  *zap.Logger
}

func New(fetcher Fetcher, sampler Sampler, j Judge, prompts Prompts, samplingWorkers int, logger *zap.Logger) *Pipeline {
	if samplingWorkers < 1 {
		samplingWorkers = 1
	}
	return &Pipeline{
		fetcher: fetcher,
		sampler: sampler,
		judge:   j,
		prompts: prompts,
		slots:   make(chan struct{}, samplingWorkers),
		logger:  logger,
	}
}

// Evaluate runs the full pipeline and returns the model's verdict. The
// verdict may be empty without an error when the model declines.
func (p *Pipeline) Evaluate(ctx context.Context, req Request) (string, error) {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = p.prompts.System
	}
	userPrompt := req.UserPrompt
	if userPrompt == "" {
		userPrompt = p.prompts.User
	}

	var sampled []frames.EncodedFrame
	var err error
	switch req.Kind {
	case KindImage:
		sampled, err = p.acquireImage(ctx, req.URL)
	case KindVideo:
		sampled, err = p.acquireVideo(ctx, req.URL)
	default:
		return "", fmt.Errorf("unknown media kind %q", req.Kind)
	}
	if err != nil {
		return "", err
	}

	assembled, err := judge.Assemble(systemPrompt, userPrompt, sampled)
	if err != nil {
		return "", err
	}
	return p.judge.Judge(ctx, assembled)
}

// acquireImage fetches a still image; the image itself is the one frame.
func (p *Pipeline) acquireImage(ctx context.Context, url string) ([]frames.EncodedFrame, error) {
	data, contentType, err := p.fetcher.FetchImage(ctx, url)
	if err != nil {
		return nil, err
	}

	frame, err := p.sampler.EncodeImage(data)
	if err != nil {
		p.logger.Warn("fetched image is not decodable",
			zap.String("url", url),
			zap.String("content_type", contentType),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: image not decodable", judge.ErrNoFrames)
	}
	return []frames.EncodedFrame{frame}, nil
}

// acquireVideo fetches the video to a temp file, samples it, and removes
// the file on every exit path.
func (p *Pipeline) acquireVideo(ctx context.Context, url string) ([]frames.EncodedFrame, error) {
	path, err := p.fetcher.FetchVideo(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			p.logger.Warn("failed to remove temp video file",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}()

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.slots }()

	// A started decode runs to completion; cancellation is not propagated
	// into the sampling stage.
	return p.sampler.Sample(context.WithoutCancel(ctx), path)
}
