package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediajudge/pkg/frames"
)

func TestAssemble(t *testing.T) {
	fs := testFrames(5)
	req, err := Assemble("sys prompt", "user prompt", fs)
	require.NoError(t, err)

	assert.Equal(t, "sys prompt", req.SystemPrompt)
	assert.Equal(t, "user prompt", req.UserPrompt)
	require.Len(t, req.Frames, 5)
	// Sampling order is preserved
	for i, f := range req.Frames {
		assert.Equal(t, fs[i].Index, f.Index)
	}
}

func TestAssemble_ZeroFrames(t *testing.T) {
	req, err := Assemble("sys", "user", nil)
	assert.ErrorIs(t, err, ErrNoFrames)
	assert.Nil(t, req)

	req, err = Assemble("sys", "user", []frames.EncodedFrame{})
	assert.ErrorIs(t, err, ErrNoFrames)
	assert.Nil(t, req)
}

func TestContentParts_Ordering(t *testing.T) {
	req, err := Assemble("sys", "what do you see", testFrames(2))
	require.NoError(t, err)

	parts := req.contentParts()
	require.Len(t, parts, 3)
	// Text first, then one image part per frame
	require.NotNil(t, parts[0].OfText)
	assert.Equal(t, "what do you see", parts[0].OfText.Text)
	require.NotNil(t, parts[1].OfImageURL)
	require.NotNil(t, parts[2].OfImageURL)
	assert.Contains(t, parts[1].OfImageURL.ImageURL.URL, "data:image/jpeg;base64,")
}
