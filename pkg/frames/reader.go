package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os/exec"
	"strconv"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// ErrOpen means the video source could not be opened or probed. This is
// fatal for the invocation; there is no retry.
var ErrOpen = errors.New("frames: cannot open video")

// Meta describes a probed video source. FPS may be zero when the container
// does not report a usable frame rate.
type Meta struct {
	FPS         float64
	TotalFrames int
}

// VideoReader opens a video source for frame extraction.
type VideoReader interface {
	Open(ctx context.Context, path string) (VideoHandle, error)
}

// VideoHandle is a decoder handle for one video source. Close must be
// called on every exit path.
type VideoHandle interface {
	Meta() Meta
	// ReadFrame seeks to the given frame index and decodes it. Failures
	// are per-index and may be tolerated by the caller.
	ReadFrame(ctx context.Context, index int) (image.Image, error)
	Close() error
}

// FFmpegReader extracts frames by shelling out to ffprobe/ffmpeg.
type FFmpegReader struct{}

func NewFFmpegReader() *FFmpegReader {
	return &FFmpegReader{}
}

func (r *FFmpegReader) Open(ctx context.Context, path string) (VideoHandle, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate,nb_frames",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1",
		path,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe %s: %v", ErrOpen, path, err)
	}

	meta, err := parseProbe(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}

	return &ffmpegHandle{path: path, meta: meta}, nil
}

// parseProbe reads key=value lines emitted by ffprobe. When nb_frames is
// missing (common for fragmented MP4 and streams), the total is derived
// from the format duration and the frame rate.
func parseProbe(out []byte) (Meta, error) {
	var meta Meta
	var duration float64

	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "r_frame_rate":
			meta.FPS = parseRate(value)
		case "nb_frames":
			if n, err := strconv.Atoi(value); err == nil {
				meta.TotalFrames = n
			}
		case "duration":
			if d, err := strconv.ParseFloat(value, 64); err == nil {
				duration = d
			}
		}
	}

	if meta.TotalFrames <= 0 && duration > 0 {
		fps := meta.FPS
		if fps <= 0 {
			fps = FallbackFPS
		}
		meta.TotalFrames = int(math.Round(duration * fps))
	}
	if meta.TotalFrames <= 0 {
		return Meta{}, fmt.Errorf("no frame count or duration in probe output")
	}
	return meta, nil
}

// parseRate parses ffprobe rational rates like "30000/1001" as well as
// plain decimals. Returns 0 when the value is unusable.
func parseRate(value string) float64 {
	num, den, ok := strings.Cut(value, "/")
	if !ok {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return f
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

type ffmpegHandle struct {
	path string
	meta Meta
}

func (h *ffmpegHandle) Meta() Meta { return h.meta }

func (h *ffmpegHandle) ReadFrame(ctx context.Context, index int) (image.Image, error) {
	fps := h.meta.FPS
	if fps <= 0 {
		fps = FallbackFPS
	}
	offset := float64(index) / fps

	out, err := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-ss", strconv.FormatFloat(offset, 'f', 6, 64),
		"-i", h.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"-",
	).Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg frame %d: %w", index, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ffmpeg frame %d: no output", index)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", index, err)
	}
	return img, nil
}

func (h *ffmpegHandle) Close() error {
	// Each extraction is a separate process; nothing is held open.
	return nil
}
