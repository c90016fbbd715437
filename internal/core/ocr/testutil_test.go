package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/disintegration/imaging"
)

// minimalPDF builds a structurally valid PDF with n blank pages.
func minimalPDF(n int) []byte {
	var buf bytes.Buffer
	offsets := []int{}
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	for i := 0; i < n; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << >> >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// fakePdftoppm writes one solid PNG per requested page next to the output prefix.
type fakePdftoppm struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakePdftoppm) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}

	last := 1
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-l" {
			last, _ = strconv.Atoi(args[i+1])
		}
	}
	prefix := args[len(args)-1]
	for p := 1; p <= last; p++ {
		img := imaging.New(60+p, 40, color.White)
		if err := imaging.Save(img, filepath.Join(filepath.Dir(prefix), fmt.Sprintf("%s-%d.png", filepath.Base(prefix), p))); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func word(text string, x1, y1, x2, y2 int) RecognizedWord {
	return RecognizedWord{Text: text, Box: BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}, Confidence: 90}
}

// strokes draws thin dark vertical bars on a white background.
func strokes(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.White)
	for x := 20; x < w-20; x += 30 {
		for dx := 0; dx < 4; dx++ {
			for y := 10; y < h-10; y++ {
				img.Set(x+dx, y, color.Black)
			}
		}
	}
	return img
}
