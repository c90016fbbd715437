package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	OCR     OCRConfig
	Vision  VisionConfig
	Extract ExtractConfig
	Batch   BatchConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
	HTTPAddr string // upload endpoint; disabled when empty
}

// OCRConfig holds rasterization and recognition configuration
type OCRConfig struct {
	Pdftoppm          string
	DPI               int
	MaxPages          int
	Languages         []string
	MinWordConfidence float64
	TessdataDir       string
	TessdataURL       string
	TessdataTimeout   time.Duration
}

// VisionConfig holds configuration of the remote multimodal model.
// The vision path is skipped when APIKey is empty.
type VisionConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// Enabled reports whether the vision path should be attempted.
func (v VisionConfig) Enabled() bool {
	return strings.TrimSpace(v.APIKey) != ""
}

// ExtractConfig holds the empirically tuned extraction constants.
// Tolerances are multiples of a page's average word height.
type ExtractConfig struct {
	Timeout            time.Duration
	LineTolerance      float64
	ParallelTolerance  float64
	NextLineTolerance  float64
	RescueTolerance    float64
	NextLinesLookahead int
	RescueLookback     int
}

// BatchConfig holds configuration for directory imports
type BatchConfig struct {
	Workers int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr: getEnv("HTTP_ADDR", ""),
		},
		OCR: OCRConfig{
			Pdftoppm:          getEnv("PDFTOPPM_BIN", "pdftoppm"),
			DPI:               getEnvAsInt("OCR_DPI", 216),
			MaxPages:          getEnvAsInt("OCR_MAX_PAGES", 20),
			Languages:         getEnvAsList("OCR_LANGS", []string{"rus", "eng"}),
			MinWordConfidence: getEnvAsFloat64("OCR_MIN_WORD_CONFIDENCE", 60),
			TessdataDir:       getEnv("TESSDATA_PREFIX", "./tmp/tessdata"),
			TessdataURL:       getEnv("TESSDATA_URL", "https://github.com/tesseract-ocr/tessdata_fast/raw/main"),
			TessdataTimeout:   getEnvAsDuration("TESSDATA_TIMEOUT", 2*time.Minute),
		},
		Vision: VisionConfig{
			APIKey:    getEnv("VISION_API_KEY", ""),
			BaseURL:   getEnv("VISION_BASE_URL", "https://api.openai.com/v1"),
			Model:     getEnv("VISION_MODEL", "gpt-4o-mini"),
			Timeout:   getEnvAsDuration("VISION_TIMEOUT", 90*time.Second),
			MaxTokens: getEnvAsInt("VISION_MAX_TOKENS", 4096),
		},
		Extract: ExtractConfig{
			Timeout:            getEnvAsDuration("EXTRACT_TIMEOUT", 3*time.Minute),
			LineTolerance:      getEnvAsFloat64("LINE_TOLERANCE", 0.5),
			ParallelTolerance:  getEnvAsFloat64("PARALLEL_TOLERANCE", 2),
			NextLineTolerance:  getEnvAsFloat64("NEXT_LINE_TOLERANCE", 3),
			RescueTolerance:    getEnvAsFloat64("RESCUE_TOLERANCE", 10),
			NextLinesLookahead: getEnvAsInt("NEXT_LINES_LOOKAHEAD", 3),
			RescueLookback:     getEnvAsInt("RESCUE_LOOKBACK", 5),
		},
		Batch: BatchConfig{
			Workers: getEnvAsInt("BATCH_WORKERS", 2),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits on "+" or "," so both "rus+eng" and "rus,eng" work.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '+' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("GRPC_ADDR", c.Server.GRPCAddr, Required).
		Field("PDFTOPPM_BIN", c.OCR.Pdftoppm, Required).
		Field("OCR_DPI", c.OCR.DPI, Positive).
		Field("OCR_LANGS", c.OCR.Languages, NonEmptyList).
		Field("OCR_MIN_WORD_CONFIDENCE", c.OCR.MinWordConfidence, Between(0, 100)).
		Field("TESSDATA_PREFIX", c.OCR.TessdataDir, Required).
		Field("LINE_TOLERANCE", c.Extract.LineTolerance, Positive).
		Field("PARALLEL_TOLERANCE", c.Extract.ParallelTolerance, Positive).
		Field("NEXT_LINE_TOLERANCE", c.Extract.NextLineTolerance, Positive).
		Field("RESCUE_TOLERANCE", c.Extract.RescueTolerance, Positive).
		Field("BATCH_WORKERS", c.Batch.Workers, Positive)
	if c.Vision.Enabled() {
		v.Field("VISION_BASE_URL", c.Vision.BaseURL, Required).
			Field("VISION_MODEL", c.Vision.Model, Required)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
