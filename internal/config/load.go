package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meannnn/MindM/internal/platform/envutil"
)

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		d.Duration = time.Duration(n) * time.Second
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or integer seconds: %w", err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (any, error) { return d.Duration.String(), nil }

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":5000",
			ReadHeaderTimeout: Duration{Duration: 10 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxUploadBytes:    16 << 20,
			CORSOrigins:       []string{"*"},
		},
		Storage: StorageConfig{
			UploadDir: "uploads",
			OutputDir: "outputs",
			TempDir:   filepath.Join(os.TempDir(), "mindm"),
			SweepAge:  Duration{Duration: time.Hour},
		},
		Templates: TemplatesConfig{
			Dir:       "templates",
			DefaultID: "standard",
		},
		LLM: LLMConfig{
			BaseURL:             "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Model:               "qwen-max",
			Temperature:         0.7,
			TopP:                0.8,
			MaxTokens:           6000,
			Timeout:             Duration{Duration: 180 * time.Second},
			HandleModeThreshold: 60000,
		},
		Retry: RetryConfig{
			MaxRetries: 2,
			Backoff:    Duration{Duration: time.Second},
			MaxBackoff: Duration{Duration: 10 * time.Second},
		},
		Pipeline: PipelineConfig{ProcessOnUpload: false},
	}
}

// Load reads MINDM_CONFIG (or ./config/config.yaml when present) over the
// defaults, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("MINDM_CONFIG"))
}

// LoadFile is Load with an explicit YAML path. An empty path falls back to
// ./config/config.yaml when it exists.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	cfgPath := strings.TrimSpace(path)
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.Addr = envutil.String("MINDM_HTTP_ADDR", cfg.HTTP.Addr)
	if origins := envutil.String("CORS_ORIGINS", ""); origins != "" {
		cfg.HTTP.CORSOrigins = splitList(origins)
	}
	cfg.HTTP.MaxUploadBytes = int64(envutil.Int("MAX_UPLOAD_BYTES", int(cfg.HTTP.MaxUploadBytes)))

	cfg.Storage.UploadDir = envutil.String("UPLOAD_DIR", cfg.Storage.UploadDir)
	cfg.Storage.OutputDir = envutil.String("OUTPUT_DIR", cfg.Storage.OutputDir)
	cfg.Storage.TempDir = envutil.String("TEMP_DIR", cfg.Storage.TempDir)
	cfg.Templates.Dir = envutil.String("TEMPLATE_DIR", cfg.Templates.Dir)
	cfg.Templates.DefaultID = envutil.String("DEFAULT_TEMPLATE", cfg.Templates.DefaultID)

	cfg.LLM.APIKey = envutil.String("DASHSCOPE_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.BaseURL = envutil.String("DASHSCOPE_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = envutil.String("DEFAULT_MODEL", cfg.LLM.Model)
	cfg.LLM.Temperature = envutil.Float("TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.TopP = envutil.Float("TOP_P", cfg.LLM.TopP)
	cfg.LLM.MaxTokens = envutil.Int("MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.Timeout.Duration = envutil.Duration("LLM_TIMEOUT", cfg.LLM.Timeout.Duration)
	cfg.LLM.Stream = envutil.Bool("LLM_STREAM", cfg.LLM.Stream)
	cfg.LLM.RateLimit = envutil.Float("LLM_RATE_LIMIT", cfg.LLM.RateLimit)

	cfg.Retry.MaxRetries = envutil.Int("LLM_MAX_RETRIES", cfg.Retry.MaxRetries)
	cfg.Pipeline.ProcessOnUpload = envutil.Bool("PROCESS_ON_UPLOAD", cfg.Pipeline.ProcessOnUpload)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http.addr is required")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("http.max_upload_bytes must be positive")
	}
	for name, dir := range map[string]string{
		"storage.upload_dir": c.Storage.UploadDir,
		"storage.output_dir": c.Storage.OutputDir,
		"storage.temp_dir":   c.Storage.TempDir,
		"templates.dir":      c.Templates.Dir,
	} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must not be negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature %v out of range [0,2]", c.LLM.Temperature)
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		return fmt.Errorf("llm.top_p %v out of range [0,1]", c.LLM.TopP)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
