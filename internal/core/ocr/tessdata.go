package ocr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/joseph-ayodele/labreport-import/internal/common"
)

type AssetConfig struct {
	Dir     string        // local cache dir, used as the tessdata prefix
	BaseURL string        // <BaseURL>/<lang>.traineddata
	Timeout time.Duration // per download
}

// AssetStore makes sure Tesseract language data is available locally,
// downloading each missing language once per process.
type AssetStore struct {
	cfg    AssetConfig
	client *http.Client
	group  singleflight.Group
	logger *slog.Logger
}

func NewAssetStore(cfg AssetConfig, client *http.Client, logger *slog.Logger) *AssetStore {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &AssetStore{cfg: cfg, client: client, logger: logger}
}

// Dir is the tessdata prefix handed to the engine.
func (s *AssetStore) Dir() string { return s.cfg.Dir }

// Ensure returns the tessdata directory once every language in langs is present.
// Download failures are reported as common.ErrTransientService.
func (s *AssetStore) Ensure(ctx context.Context, langs ...string) (string, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create tessdata dir: %w", err)
	}
	for _, lang := range langs {
		path := s.path(lang)
		if st, err := os.Stat(path); err == nil && st.Size() > 0 {
			continue
		}
		// the shared download outlives any single caller; each caller still
		// stops waiting when its own ctx is done
		ch := s.group.DoChan(lang, func() (interface{}, error) {
			return nil, s.download(context.WithoutCancel(ctx), lang)
		})
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case r := <-ch:
			if r.Err != nil {
				return "", r.Err
			}
			s.logger.Info("ocr.tessdata.ready", "lang", lang, "shared", r.Shared)
		}
	}
	return s.cfg.Dir, nil
}

func (s *AssetStore) path(lang string) string {
	return filepath.Join(s.cfg.Dir, lang+".traineddata")
}

func (s *AssetStore) download(ctx context.Context, lang string) error {
	// another caller may have finished between Stat and Do
	if st, err := os.Stat(s.path(lang)); err == nil && st.Size() > 0 {
		return nil
	}
	if s.cfg.BaseURL == "" {
		return common.TransientService("tessdata "+lang, common.ErrNotConfigured)
	}
	url := s.cfg.BaseURL + "/" + lang + ".traineddata"
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build tessdata request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("ocr.tessdata.download_failed", "lang", lang, "url", url, "error", err)
		return common.TransientService("download tessdata "+lang, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("ocr.tessdata.download_failed", "lang", lang, "url", url, "status", resp.StatusCode)
		return common.TransientService("download tessdata "+lang, fmt.Errorf("http status %d", resp.StatusCode))
	}

	tmp, err := os.CreateTemp(s.cfg.Dir, lang+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return common.TransientService("download tessdata "+lang, err)
	}
	if n == 0 {
		cleanup()
		return common.TransientService("download tessdata "+lang, fmt.Errorf("empty body"))
	}

	// atomic rename; if another process already wrote it, keep theirs
	if err := os.Rename(tmp.Name(), s.path(lang)); err != nil {
		cleanup()
		if st, statErr := os.Stat(s.path(lang)); statErr == nil && !st.IsDir() {
			return nil
		}
		return fmt.Errorf("persist tessdata: %w", err)
	}

	s.logger.Info("ocr.tessdata.downloaded",
		"lang", lang,
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
