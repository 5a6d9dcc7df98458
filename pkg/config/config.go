package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const defaultSystemPrompt = "You are a strict multimedia quality judge. " +
	"You receive a sequence of still frames sampled uniformly across the full duration of a video " +
	"(or a single image) and evaluate the visual quality of the content. " +
	"Base your verdict only on what is visible in the frames."

const defaultUserPrompt = "Evaluate the overall quality of the media shown in these frames. " +
	"Comment on clarity, composition, lighting and any visible defects, then give a final verdict."

// Config holds the sampling and acquisition tunables, loaded from a YAML
// file. Every field has a default so the file is optional.
type Config struct {
	Sampling struct {
		MaxFrames        int     `yaml:"max_frames"`
		SamplingFPS      float64 `yaml:"sampling_fps"`
		TargetShortSide  int     `yaml:"target_short_side"`
		MaxLongSide      int     `yaml:"max_long_side"`
		JPEGQuality      int     `yaml:"jpeg_quality"`
		DebugJPEGQuality int     `yaml:"debug_jpeg_quality"`
		SaveDebugFrames  bool    `yaml:"save_debug_frames"`
		DebugFrameDir    string  `yaml:"debug_frame_dir"`
		Workers          int     `yaml:"workers"`
	} `yaml:"sampling"`
	Acquire struct {
		TimeoutSeconds   int `yaml:"timeout_seconds"`
		RetryAttempts    int `yaml:"retry_attempts"`
		RetryWaitSeconds int `yaml:"retry_wait_seconds"`
	} `yaml:"acquire"`
	Prompts struct {
		System string `yaml:"system"`
		User   string `yaml:"user"`
	} `yaml:"prompts"`
}

// Env holds secrets and deployment settings read from the process
// environment. The API key is deliberately absent from the YAML file.
type Env struct {
	APIKey          string `env:"ARK_API_KEY"`
	JudgeBaseURL    string `env:"JUDGE_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	JudgeModel      string `env:"JUDGE_MODEL" envDefault:"doubao-seed-1-8-251228"`
	ListenAddr      string `env:"LISTEN_ADDR" envDefault:":8080"`
	SaveDebugFrames *bool  `env:"SAVE_DEBUG_FRAMES"`
}

func defaults() *Config {
	config := &Config{}
	config.Sampling.MaxFrames = 100
	config.Sampling.SamplingFPS = 4.0
	config.Sampling.TargetShortSide = 1080
	config.Sampling.MaxLongSide = 1920
	config.Sampling.JPEGQuality = 85
	config.Sampling.DebugJPEGQuality = 95
	config.Sampling.SaveDebugFrames = false
	config.Sampling.DebugFrameDir = "logs/debug_frames"
	config.Sampling.Workers = 0 // 0 means runtime.NumCPU at wiring time
	config.Acquire.TimeoutSeconds = 30
	config.Acquire.RetryAttempts = 3
	config.Acquire.RetryWaitSeconds = 1
	config.Prompts.System = defaultSystemPrompt
	config.Prompts.User = defaultUserPrompt
	return config
}

// LoadConfig reads the YAML config at path. A missing file yields the
// defaults; a present but unreadable or invalid file is an error.
func LoadConfig(path string) (*Config, error) {
	config := defaults()

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// LoadEnv parses deployment settings from the environment.
func LoadEnv() (*Env, error) {
	e := &Env{}
	if err := env.Parse(e); err != nil {
		return nil, err
	}
	return e, nil
}
