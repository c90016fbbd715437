package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess_BinarizesStrokes(t *testing.T) {
	p := NewPreprocessor(PreprocessOptions{}, nil)
	src := strokes(200, 120)

	bin := p.Preprocess(src)
	require.Equal(t, 200, bin.Rect.Dx())
	require.Equal(t, 120, bin.Rect.Dy())

	for _, v := range bin.Pix {
		require.True(t, v == 0 || v == 255, "pixel %d is not binary", v)
	}
	assert.Equal(t, uint8(0), bin.GrayAt(21, 60).Y, "stroke pixel should be black")
	assert.Equal(t, uint8(255), bin.GrayAt(35, 60).Y, "background should stay white")
	assert.Equal(t, uint8(255), bin.GrayAt(5, 5).Y)
}

func TestPreprocess_NonZeroOrigin(t *testing.T) {
	p := NewPreprocessor(PreprocessOptions{}, nil)
	sub := strokes(200, 120).SubImage(image.Rect(10, 10, 110, 90))

	bin := p.Preprocess(sub)
	assert.Equal(t, image.Rect(0, 0, 100, 80), bin.Rect)
}

func TestPreprocess_ColourRGBA(t *testing.T) {
	p := NewPreprocessor(PreprocessOptions{}, nil)
	src := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			c := color.RGBA{R: 250, G: 240, B: 210, A: 255}
			if x%30 >= 20 && x%30 < 23 {
				c = color.RGBA{R: 20, G: 30, B: 120, A: 255}
			}
			src.SetRGBA(x, y, c)
		}
	}

	bin := p.Preprocess(src)
	require.Equal(t, image.Rect(0, 0, 120, 80), bin.Rect)
	assert.Equal(t, uint8(0), bin.GrayAt(21, 40).Y, "blue stroke should be black")
	assert.Equal(t, uint8(255), bin.GrayAt(10, 40).Y, "cream background should be white")
}

func TestCLAHE_NarrowImageHasNoEmptyTiles(t *testing.T) {
	for _, size := range []int{49, 17, 9} {
		g := image.NewGray(image.Rect(0, 0, size, size))
		for i := range g.Pix {
			g.Pix[i] = 200
		}
		out := clahe(g, 8, 2.0)
		for i, v := range out.Pix {
			require.Equal(t, out.Pix[0], v, "size %d pixel %d", size, i)
		}
	}
}

func TestCLAHE_UniformImageUnchangedAtWhite(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	out := clahe(g, 8, 2.0)
	for _, v := range out.Pix {
		require.Equal(t, uint8(255), v)
	}
}

func TestAdaptiveThreshold_TinyImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 1))
	g.Pix = []uint8{200, 10, 200}
	out := adaptiveThreshold(g, 31, 10)
	assert.Equal(t, []uint8{255, 0, 255}, out.Pix)
}

func TestPreparePages_EncodesPNGInOrder(t *testing.T) {
	p := NewPreprocessor(PreprocessOptions{Workers: 2}, nil)
	pages := []Page{
		{Index: 0, Image: strokes(80, 50)},
		{Index: 1, Image: imaging.New(40, 30, color.White)},
	}

	prepared, err := p.PreparePages(context.Background(), pages)
	require.NoError(t, err)
	require.Len(t, prepared, 2)
	for i, pp := range prepared {
		assert.Equal(t, i, pp.Index)
		img, err := imaging.Decode(bytes.NewReader(pp.PNG))
		require.NoError(t, err)
		assert.Equal(t, pp.Width, img.Bounds().Dx())
		assert.Equal(t, pp.Height, img.Bounds().Dy())
	}
	assert.Equal(t, 40, prepared[1].Width)
}

func TestPreparePages_CanceledContext(t *testing.T) {
	p := NewPreprocessor(PreprocessOptions{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.PreparePages(ctx, []Page{{Image: strokes(40, 40)}})
	assert.ErrorIs(t, err, context.Canceled)
}
