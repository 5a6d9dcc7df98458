package frames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbe(t *testing.T) {
	out := []byte("r_frame_rate=30000/1001\nnb_frames=300\nduration=10.010000\n")
	meta, err := parseProbe(out)
	require.NoError(t, err)

	assert.InDelta(t, 29.97, meta.FPS, 0.01)
	assert.Equal(t, 300, meta.TotalFrames)
}

func TestParseProbe_MissingFrameCountUsesDuration(t *testing.T) {
	out := []byte("r_frame_rate=25/1\nnb_frames=N/A\nduration=4.000000\n")
	meta, err := parseProbe(out)
	require.NoError(t, err)

	assert.Equal(t, 25.0, meta.FPS)
	assert.Equal(t, 100, meta.TotalFrames)
}

func TestParseProbe_NoRateFallsBackForDerivedCount(t *testing.T) {
	out := []byte("r_frame_rate=0/0\nnb_frames=N/A\nduration=2.000000\n")
	meta, err := parseProbe(out)
	require.NoError(t, err)

	// Rate stays zero for the caller to notice; the derived frame count
	// uses the fallback rate
	assert.Equal(t, 0.0, meta.FPS)
	assert.Equal(t, 50, meta.TotalFrames)
}

func TestParseProbe_Unusable(t *testing.T) {
	_, err := parseProbe([]byte("r_frame_rate=N/A\nnb_frames=N/A\nduration=N/A\n"))
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 30.0, parseRate("30/1"))
	assert.InDelta(t, 23.976, parseRate("24000/1001"), 0.001)
	assert.Equal(t, 25.0, parseRate("25"))
	assert.Equal(t, 0.0, parseRate("0/0"))
	assert.Equal(t, 0.0, parseRate("N/A"))
	assert.Equal(t, 0.0, parseRate(""))
}
