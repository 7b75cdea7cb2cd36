package config

import "time"

type Duration struct {
	Duration time.Duration
}

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Templates TemplatesConfig `yaml:"templates"`
	LLM       LLMConfig       `yaml:"llm"`
	Retry     RetryConfig     `yaml:"retry"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
	OutputDir string `yaml:"output_dir"`
	TempDir   string `yaml:"temp_dir"`
	// SweepAge removes temp files older than this at startup; zero removes all.
	SweepAge Duration `yaml:"sweep_age"`
}

type TemplatesConfig struct {
	Dir       string `yaml:"dir"`
	DefaultID string `yaml:"default_id"`
}

type LLMConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature float64  `yaml:"temperature"`
	TopP        float64  `yaml:"top_p"`
	MaxTokens   int      `yaml:"max_tokens"`
	Timeout     Duration `yaml:"timeout"`
	Stream      bool     `yaml:"stream"`
	RateLimit   float64  `yaml:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst"`

	// HandleModeThreshold switches to provider file handles once the material
	// text exceeds this many characters. Zero disables handle mode.
	HandleModeThreshold int `yaml:"handle_mode_threshold"`
}

type RetryConfig struct {
	MaxRetries int      `yaml:"max_retries"`
	Backoff    Duration `yaml:"backoff"`
	MaxBackoff Duration `yaml:"max_backoff"`
}

type PipelineConfig struct {
	// ProcessOnUpload runs generation inline in the upload request.
	ProcessOnUpload bool `yaml:"process_on_upload"`
}
