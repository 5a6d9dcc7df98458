package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// ErrEncode means a decoded frame could not be compressed. Unlike a
// per-index read miss this points at a codec-level problem, so it aborts
// the whole sampling operation.
var ErrEncode = errors.New("frames: frame encoding failed")

const largePayloadWarnBytes = 50 * 1024 * 1024

// Options are the sampling tunables. See config defaults for the
// production values.
type Options struct {
	MaxFrames        int
	SamplingFPS      float64
	TargetShortSide  int
	MaxLongSide      int
	JPEGQuality      int
	DebugJPEGQuality int
	SaveDebugFrames  bool
	DebugFrameDir    string
}

// Sampler extracts a time-uniform, resolution-bounded frame sequence from
// a video source.
type Sampler struct {
	reader VideoReader
	opts   Options
	logger *zap.Logger

	// encode is swappable so tests can inject encode failures.
	encode func(img image.Image, quality int) ([]byte, error)
}

func NewSampler(reader VideoReader, opts Options, logger *zap.Logger) *Sampler {
	return &Sampler{
		reader: reader,
		opts:   opts,
		logger: logger,
		encode: encodeJPEG,
	}
}

// Sample opens the video at path, samples frames uniformly across its full
// duration, and returns them encoded in sampling order. A read failure at
// one index is logged and skipped; every index failing yields an empty
// slice with a nil error, which the caller treats as an empty result.
func (s *Sampler) Sample(ctx context.Context, videoPath string) ([]EncodedFrame, error) {
	handle, err := s.reader.Open(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	meta := handle.Meta()
	fps := meta.FPS
	if fps <= 0 {
		fps = FallbackFPS
		s.logger.Warn("video reports no frame rate, using fallback",
			zap.String("path", videoPath),
			zap.Float64("fallback_fps", fps),
		)
	}

	duration := float64(meta.TotalFrames) / fps
	indices := Plan(meta.TotalFrames, fps, s.opts.MaxFrames, s.opts.SamplingFPS)

	s.logger.Info("sampling plan computed",
		zap.String("path", videoPath),
		zap.Float64("fps", fps),
		zap.Int("total_frames", meta.TotalFrames),
		zap.Float64("duration_s", duration),
		zap.Int("planned_frames", len(indices)),
	)

	debugDir, err := s.debugDir(videoPath)
	if err != nil {
		return nil, err
	}

	encoded := make([]EncodedFrame, 0, len(indices))
	for _, idx := range indices {
		img, err := handle.ReadFrame(ctx, idx)
		if err != nil {
			s.logger.Warn("failed to read frame, skipping",
				zap.String("path", videoPath),
				zap.Int("frame_index", idx),
				zap.Error(err),
			)
			continue
		}

		resized := resizeKeepRatio(img, s.opts.TargetShortSide, s.opts.MaxLongSide)
		frame, err := s.encodeResized(resized, idx)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, frame)

		if debugDir != "" {
			s.saveDebugFrame(resized, debugDir, len(encoded))
		}
	}

	s.logPayload(videoPath, duration, encoded)
	return encoded, nil
}

// EncodeImage runs a single still image through the same resize and
// encode policy as a sampled video frame.
func (s *Sampler) EncodeImage(data []byte) (EncodedFrame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return EncodedFrame{}, fmt.Errorf("decode image: %w", err)
	}
	resized := resizeKeepRatio(img, s.opts.TargetShortSide, s.opts.MaxLongSide)
	return s.encodeResized(resized, 0)
}

// encodeResized compresses an already resized frame for the model-bound
// sequence.
func (s *Sampler) encodeResized(resized image.Image, index int) (EncodedFrame, error) {
	data, err := s.encode(resized, s.opts.JPEGQuality)
	if err != nil {
		return EncodedFrame{}, fmt.Errorf("%w: frame %d: %v", ErrEncode, index, err)
	}
	bounds := resized.Bounds()
	return EncodedFrame{
		Data:     data,
		MIMEType: "image/jpeg",
		Index:    index,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

func (s *Sampler) debugDir(videoPath string) (string, error) {
	if !s.opts.SaveDebugFrames {
		return "", nil
	}
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	dir := filepath.Join(s.opts.DebugFrameDir, stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug frame dir: %w", err)
	}
	return dir, nil
}

// saveDebugFrame writes a higher-quality copy for manual inspection.
// Debug capture is diagnostic only, so failures are logged, not fatal.
func (s *Sampler) saveDebugFrame(resized image.Image, dir string, ordinal int) {
	path := filepath.Join(dir, fmt.Sprintf("frame_%03d_full.jpg", ordinal))
	if err := imaging.Save(resized, path, imaging.JPEGQuality(s.opts.DebugJPEGQuality)); err != nil {
		s.logger.Warn("failed to save debug frame",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("saved debug frame", zap.String("path", path))
}

func (s *Sampler) logPayload(videoPath string, duration float64, frames []EncodedFrame) {
	if len(frames) == 0 {
		s.logger.Warn("no frames extracted", zap.String("path", videoPath))
		return
	}

	total := 0
	for _, f := range frames {
		total += len(f.Data)
	}
	s.logger.Info("frames encoded",
		zap.String("path", videoPath),
		zap.Int("frames", len(frames)),
		zap.Int("width", frames[0].Width),
		zap.Int("height", frames[0].Height),
		zap.Float64("coverage_s", duration),
		zap.Int("total_bytes", total),
	)
	if total > largePayloadWarnBytes {
		s.logger.Warn("encoded payload is large, consider lowering max_frames",
			zap.Int("total_bytes", total),
		)
	}
}
