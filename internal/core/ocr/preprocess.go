package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// PreprocessOptions tunes the contrast and binarization steps.
type PreprocessOptions struct {
	TileGrid  int     // CLAHE tiles per axis, default 8
	ClipLimit float64 // CLAHE clip limit, default 2.0
	Window    int     // adaptive threshold window in px (odd), default 31
	Offset    float64 // subtracted from the local mean, default 10
	Workers   int     // page parallelism, default 4
}

func (o PreprocessOptions) withDefaults() PreprocessOptions {
	if o.TileGrid <= 0 {
		o.TileGrid = 8
	}
	if o.ClipLimit <= 0 {
		o.ClipLimit = 2.0
	}
	if o.Window <= 1 {
		o.Window = 31
	}
	if o.Window%2 == 0 {
		o.Window++
	}
	if o.Offset == 0 {
		o.Offset = 10
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	return o
}

// Preprocessor prepares rasterized pages for recognition.
type Preprocessor struct {
	opts   PreprocessOptions
	logger *slog.Logger
}

func NewPreprocessor(opts PreprocessOptions, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{opts: opts.withDefaults(), logger: logger}
}

// Preprocess converts img to grayscale, equalizes local contrast and binarizes it.
// The result has the same dimensions as img.
func (p *Preprocessor) Preprocess(img image.Image) *image.Gray {
	gray := lumaPlane(effect.Grayscale(img))
	eq := clahe(gray, p.opts.TileGrid, p.opts.ClipLimit)
	return adaptiveThreshold(eq, p.opts.Window, p.opts.Offset)
}

// lumaPlane copies the R channel of a grayscale RGBA (R=G=B) into a Gray
// anchored at (0,0).
func lumaPlane(src *image.RGBA) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			out[x] = row[x*4]
		}
	}
	return dst
}

// PreparePages preprocesses pages in parallel and PNG-encodes the result.
// Output order matches input order.
func (p *Preprocessor) PreparePages(ctx context.Context, pages []Page) ([]PreparedPage, error) {
	out := make([]PreparedPage, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, pg := range pages {
		i, pg := i, pg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bin := p.Preprocess(pg.Image)
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, bin, imaging.PNG); err != nil {
				return fmt.Errorf("encode page %d: %w", pg.Index+1, err)
			}
			out[i] = PreparedPage{
				Index:  pg.Index,
				Width:  bin.Rect.Dx(),
				Height: bin.Rect.Dy(),
				Gray:   bin,
				PNG:    buf.Bytes(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.logger.Debug("ocr.preprocess.ok", "pages", len(out))
	return out, nil
}

// clahe applies contrast-limited adaptive histogram equalization on a grid of
// tiles and blends neighbouring tile mappings bilinearly.
func clahe(src *image.Gray, grid int, clipLimit float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	tw := (w + min(grid, w) - 1) / min(grid, w)
	th := (h + min(grid, h) - 1) / min(grid, h)
	// rounding tw up can leave fewer tiles than grid; none may be empty
	tilesX, tilesY := (w+tw-1)/tw, (h+th-1)/th

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tw, ty*th
			x1, y1 := min(x0+tw, w), min(y0+th, h)
			luts[ty*tilesX+tx] = tileMapping(src, x0, y0, x1, y1, clipLimit)
		}
	}

	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(th) - 0.5
		ty0 := int(math.Floor(fy))
		ya := fy - float64(ty0)
		ty1 := ty0 + 1
		ty0 = clampInt(ty0, 0, tilesY-1)
		ty1 = clampInt(ty1, 0, tilesY-1)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tw) - 0.5
			tx0 := int(math.Floor(fx))
			xa := fx - float64(tx0)
			tx1 := tx0 + 1
			tx0 = clampInt(tx0, 0, tilesX-1)
			tx1 = clampInt(tx1, 0, tilesX-1)

			v := src.Pix[y*src.Stride+x]
			top := (1-xa)*float64(luts[ty0*tilesX+tx0][v]) + xa*float64(luts[ty0*tilesX+tx1][v])
			bot := (1-xa)*float64(luts[ty1*tilesX+tx0][v]) + xa*float64(luts[ty1*tilesX+tx1][v])
			dst.Pix[y*dst.Stride+x] = uint8(math.Round((1-ya)*top + ya*bot))
		}
	}
	return dst
}

func tileMapping(src *image.Gray, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := y0; y < y1; y++ {
		row := src.Pix[y*src.Stride:]
		for x := x0; x < x1; x++ {
			hist[row[x]]++
		}
	}
	area := (x1 - x0) * (y1 - y0)

	limit := int(clipLimit * float64(area) / 256)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	// spread clipped counts evenly; the remainder goes to the lowest bins
	inc, rem := excess/256, excess%256
	for i := range hist {
		hist[i] += inc
		if i < rem {
			hist[i]++
		}
	}

	var lut [256]uint8
	cdf := 0
	scale := 255.0 / float64(area)
	for i := range hist {
		cdf += hist[i]
		lut[i] = uint8(math.Min(255, math.Round(float64(cdf)*scale)))
	}
	return lut
}

// adaptiveThreshold marks a pixel white when it is brighter than the mean of its
// window minus offset. Means come from an integral image; windows are clipped at
// the borders.
func adaptiveThreshold(src *image.Gray, window int, offset float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	iw := w + 1
	integral := make([]uint64, iw*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(src.Pix[y*src.Stride+x])
			integral[(y+1)*iw+x+1] = integral[y*iw+x+1] + rowSum
		}
	}

	half := window / 2
	for y := 0; y < h; y++ {
		ya, yb := max(0, y-half), min(h, y+half+1)
		for x := 0; x < w; x++ {
			xa, xb := max(0, x-half), min(w, x+half+1)
			sum := integral[yb*iw+xb] - integral[ya*iw+xb] - integral[yb*iw+xa] + integral[ya*iw+xa]
			mean := float64(sum) / float64((yb-ya)*(xb-xa))
			if float64(src.Pix[y*src.Stride+x]) > mean-offset {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
