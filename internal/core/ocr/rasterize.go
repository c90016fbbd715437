package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/labreport-import/internal/common"
)

// RasterConfig configures page rendering.
type RasterConfig struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // default 216, i.e. 3x the 72 dpi PDF user space
	MaxPages int    // 0 = no limit
	Workers  int    // page decode parallelism, default 4
}

// Rasterizer turns PDF bytes into page bitmaps.
type Rasterizer struct {
	cfg    RasterConfig
	runner Runner
	logger *slog.Logger
}

func NewRasterizer(cfg RasterConfig, runner Runner, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 216
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &Rasterizer{cfg: cfg, runner: runner, logger: logger}
}

// PageCount validates data as a PDF and returns its page count.
// Any failure is reported as common.ErrFatalDocument.
func PageCount(data []byte) (n int, err error) {
	if len(data) == 0 {
		return 0, common.FatalDocument("empty document", nil)
	}
	// pdfcpu may panic on hostile input
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, common.FatalDocument("read pdf", fmt.Errorf("panic: %v", r))
		}
	}()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err = api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, common.FatalDocument("read pdf", err)
	}
	if n == 0 {
		return 0, common.FatalDocument("pdf has no pages", nil)
	}
	return n, nil
}

// Rasterize renders every page (up to MaxPages) of data.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte) ([]Page, error) {
	count, err := PageCount(data)
	if err != nil {
		r.logger.Warn("ocr.raster.invalid_pdf", "bytes", len(data), "error", err)
		return nil, err
	}
	if r.cfg.MaxPages > 0 && count > r.cfg.MaxPages {
		r.logger.Warn("ocr.raster.page_limit", "pages", count, "max_pages", r.cfg.MaxPages)
		count = r.cfg.MaxPages
	}

	tmpDir, err := os.MkdirTemp("", "lr-pp-*")
	if err != nil {
		return nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			r.logger.Warn("ocr.raster.cleanup_failed", "dir", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 216 -png -f 1 -l <n> <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-r", strconv.Itoa(r.cfg.DPI), "-png", "-f", "1", "-l", strconv.Itoa(count), in, prefix)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, common.FatalDocument("render pages", fmt.Errorf("%w: %s", err, truncate(string(errb), 512)))
	}

	// collect generated pngs (page-1.png, page-2.png, ...); pdftoppm zero-pads to equal width
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, common.FatalDocument("render pages", errors.New("pdftoppm produced no images"))
	}

	pages := make([]Page, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, path := range matches {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(path)
			if err != nil {
				return common.FatalDocument(fmt.Sprintf("decode page %d", i+1), err)
			}
			b := img.Bounds()
			pages[i] = Page{Index: i, Width: b.Dx(), Height: b.Dy(), Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("ocr.raster.ok", "pages", len(pages), "dpi", r.cfg.DPI)
	return pages, nil
}
