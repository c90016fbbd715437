package openai

import (
	"log/slog"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/labreport-import/internal/common"
)

// Config for the vision client.
type Config struct {
	APIKey      string
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
	MaxTokens   int
}

// ConfigFromVision maps application settings onto a client Config.
func ConfigFromVision(v common.VisionConfig) Config {
	return Config{
		APIKey:    v.APIKey,
		BaseURL:   v.BaseURL,
		Model:     v.Model,
		Timeout:   v.Timeout,
		MaxTokens: v.MaxTokens,
	}
}

type Client struct {
	cfg    Config
	api    *goopenai.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if logger == nil {
		logger = slog.Default()
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		cfg:    cfg,
		api:    goopenai.NewClientWithConfig(apiCfg),
		logger: logger,
	}
}
