package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Provide a path that definitely doesn't exist
	config, err := LoadConfig("non_existent_config.yml")
	require.NoError(t, err)

	assert.Equal(t, 100, config.Sampling.MaxFrames)
	assert.Equal(t, 4.0, config.Sampling.SamplingFPS)
	assert.Equal(t, 1080, config.Sampling.TargetShortSide)
	assert.Equal(t, 1920, config.Sampling.MaxLongSide)
	assert.Equal(t, 85, config.Sampling.JPEGQuality)
	assert.Equal(t, 95, config.Sampling.DebugJPEGQuality)
	assert.False(t, config.Sampling.SaveDebugFrames)
	assert.Equal(t, "logs/debug_frames", config.Sampling.DebugFrameDir)
	assert.Equal(t, 30, config.Acquire.TimeoutSeconds)
	assert.Equal(t, 3, config.Acquire.RetryAttempts)
	assert.Equal(t, 1, config.Acquire.RetryWaitSeconds)
	assert.NotEmpty(t, config.Prompts.System)
	assert.NotEmpty(t, config.Prompts.User)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	content := []byte(`
sampling:
  max_frames: 40
  sampling_fps: 2.0
  jpeg_quality: 70
  save_debug_frames: true
acquire:
  timeout_seconds: 10
  retry_attempts: 5
prompts:
  system: "judge strictly"
`)
	tmpfile, err := os.CreateTemp("", "config_test_*.yml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name()) // clean up

	if _, err := tmpfile.Write(content); err != nil {
		tmpfile.Close()
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, 40, config.Sampling.MaxFrames)
	assert.Equal(t, 2.0, config.Sampling.SamplingFPS)
	assert.Equal(t, 70, config.Sampling.JPEGQuality)
	assert.True(t, config.Sampling.SaveDebugFrames)
	assert.Equal(t, 10, config.Acquire.TimeoutSeconds)
	assert.Equal(t, 5, config.Acquire.RetryAttempts)
	assert.Equal(t, "judge strictly", config.Prompts.System)

	// Unset fields keep their defaults
	assert.Equal(t, 1080, config.Sampling.TargetShortSide)
	assert.Equal(t, 1, config.Acquire.RetryWaitSeconds)
	assert.NotEmpty(t, config.Prompts.User)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	content := []byte(`
sampling:
  max_frames: "not a number"
  broken_yaml: [ unclosed bracket
`)
	tmpfile, err := os.CreateTemp("", "config_invalid_*.yml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write(content); err != nil {
		tmpfile.Close()
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ARK_API_KEY", "test-key")
	t.Setenv("JUDGE_MODEL", "some-model")
	t.Setenv("SAVE_DEBUG_FRAMES", "true")

	e, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "test-key", e.APIKey)
	assert.Equal(t, "some-model", e.JudgeModel)
	assert.Equal(t, "https://ark.cn-beijing.volces.com/api/v3", e.JudgeBaseURL)
	assert.Equal(t, ":8080", e.ListenAddr)
	require.NotNil(t, e.SaveDebugFrames)
	assert.True(t, *e.SaveDebugFrames)
}
