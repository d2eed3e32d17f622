package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir"`
	TempDir     string `yaml:"temp_dir"`
	OutputsDir  string `yaml:"outputs_dir"`
	Concurrency int    `yaml:"concurrency"`

	FFmpeg    FFmpegConfig    `yaml:"ffmpeg"`
	Whisper   WhisperConfig   `yaml:"whisper"`
	Vision    VisionConfig    `yaml:"vision"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Services  ServicesConfig  `yaml:"services"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Server    ServerConfig    `yaml:"server"`
	Retention RetentionConfig `yaml:"retention"`
}

type FFmpegConfig struct {
	BinaryPath string  `yaml:"binary_path"`
	Threads    int     `yaml:"threads"`
	GainDB     float64 `yaml:"gain_db"`
}

// WhisperConfig points at an OpenAI-compatible transcription server.
type WhisperConfig struct {
	URL           string `yaml:"url"`
	Endpoint      string `yaml:"endpoint"`
	Model         string `yaml:"model"`
	FallbackModel string `yaml:"fallback_model"`
	Language      string `yaml:"language"`
	APIKey        string `yaml:"api_key"`
}

type VisionConfig struct {
	ModelPath         string  `yaml:"model_path"`
	SharedLibraryPath string  `yaml:"shared_library_path"`
	InputName         string  `yaml:"input_name"`
	LandmarksOutput   string  `yaml:"landmarks_output"`
	PresenceOutput    string  `yaml:"presence_output"`
	InputSize         int     `yaml:"input_size"`
	NumLandmarks      int     `yaml:"num_landmarks"`
	MinConfidence     float64 `yaml:"min_confidence"`
	MaxFrames         int     `yaml:"max_frames"`
	FrameInterval     int     `yaml:"frame_interval"`
}

type ScoringConfig struct {
	Strategy string `yaml:"strategy"`
}

type Service struct {
	URL string `yaml:"url"`
}

type ServicesConfig struct {
	Emotion Service `yaml:"emotion"`
}

// TimeoutConfig bounds each external tool invocation.
type TimeoutConfig struct {
	Demux      time.Duration `yaml:"demux"`
	Frames     time.Duration `yaml:"frames"`
	Transcribe time.Duration `yaml:"transcribe"`
	Emotion    time.Duration `yaml:"emotion"`
}

type PipelineConfig struct {
	Parallel  bool `yaml:"parallel"`
	// KeepAudio leaves the demuxed WAV in work_dir after a run.
	KeepAudio bool `yaml:"keep_audio"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	UploadDir    string   `yaml:"upload_dir"`
	AllowOrigins []string `yaml:"allow_origins"`
	MaxUploadMB  int64    `yaml:"max_upload_mb"`
}

type RetentionConfig struct {
	GuestTTL time.Duration `yaml:"guest_ttl"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:     "./work",
		TempDir:     os.TempDir(),
		OutputsDir:  "./outputs",
		Concurrency: 2,
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
			GainDB:     10,
		},
		Whisper: WhisperConfig{
			URL:           "http://localhost:9000",
			Endpoint:      "/v1/audio/transcriptions",
			Model:         "base",
			FallbackModel: "tiny",
			Language:      "ko",
		},
		Vision: VisionConfig{
			ModelPath:       "./models/face_landmark_with_attention.onnx",
			InputName:       "input_1",
			LandmarksOutput: "Identity",
			PresenceOutput:  "Identity_1",
			InputSize:       192,
			NumLandmarks:    478,
			MinConfidence:   0.5,
			MaxFrames:       150,
			FrameInterval:   5,
		},
		Scoring: ScoringConfig{
			Strategy: "canonical",
		},
		Timeouts: TimeoutConfig{
			Demux:      2 * time.Minute,
			Frames:     3 * time.Minute,
			Transcribe: 5 * time.Minute,
			Emotion:    30 * time.Second,
		},
		Pipeline: PipelineConfig{
			Parallel: true,
		},
		Server: ServerConfig{
			Addr:         ":5000",
			UploadDir:    "./uploads",
			AllowOrigins: []string{"*"},
			MaxUploadMB:  512,
		},
		Retention: RetentionConfig{
			GuestTTL: time.Hour,
		},
	}
}

// applyEnv lets deployment secrets and endpoints bypass the YAML file.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("WHISPER_URL"); ok && v != "" {
		cfg.Whisper.URL = v
	}
	if v, ok := os.LookupEnv("WHISPER_MODEL"); ok && v != "" {
		cfg.Whisper.Model = v
	}
	if v, ok := os.LookupEnv("WHISPER_API_KEY"); ok {
		cfg.Whisper.APIKey = v
	}
	if v, ok := os.LookupEnv("FACE_MODEL_PATH"); ok && v != "" {
		cfg.Vision.ModelPath = v
	}
	if v, ok := os.LookupEnv("ONNXRUNTIME_LIB"); ok && v != "" {
		cfg.Vision.SharedLibraryPath = v
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".interviewlens", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
