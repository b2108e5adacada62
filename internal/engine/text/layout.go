// Package text lays out and rasterizes label text with an OpenType face.
package text

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrAtlasFull is returned by Layout when the glyph cache has no room for a
// new glyph. Compact frees it.
var ErrAtlasFull = errors.New("glyph cache full")

// Options configures a Layouter.
type Options struct {
	Size       float64 // points
	DPI        float64
	LineHeight float64 // pixels, 0 uses the face height
	CacheSize  int     // distinct glyphs held before ErrAtlasFull
}

// DefaultOptions returns the label font settings.
func DefaultOptions() Options {
	return Options{
		Size:       18,
		DPI:        72,
		LineHeight: 18,
		CacheSize:  1024,
	}
}

// Layout is the measured shape of a wrapped string.
type Layout struct {
	LineWidth  float32 // widest line in pixels
	LineCount  int
	LineHeight float32
	Lines      []string
}

// Height returns the total height of all lines.
func (l Layout) Height() float32 {
	return float32(l.LineCount) * l.LineHeight
}

// Layouter measures and draws text with a single face.
// It is not safe for concurrent use.
type Layouter struct {
	face       font.Face
	ascent     fixed.Int26_6
	lineHeight float32
	capacity   int
	advances   map[rune]fixed.Int26_6
}

// New parses fontData and builds a Layouter. A nil fontData selects the
// bundled Go Regular face.
func New(fontData []byte, opts Options) (*Layouter, error) {
	if fontData == nil {
		fontData = goregular.TTF
	}
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultOptions().DPI
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultOptions().CacheSize
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.Size,
		DPI:     opts.DPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	metrics := face.Metrics()
	lineHeight := float32(opts.LineHeight)
	if lineHeight <= 0 {
		lineHeight = toFloat(metrics.Height)
	}

	return &Layouter{
		face:       face,
		ascent:     metrics.Ascent,
		lineHeight: lineHeight,
		capacity:   opts.CacheSize,
		advances:   make(map[rune]fixed.Int26_6),
	}, nil
}

// LineHeight returns the spacing between baselines in pixels.
func (l *Layouter) LineHeight() float32 {
	return l.lineHeight
}

// Cached returns the number of glyphs currently held.
func (l *Layouter) Cached() int {
	return len(l.advances)
}

// Compact empties the glyph cache.
func (l *Layouter) Compact() {
	clear(l.advances)
}

// Close releases the face.
func (l *Layouter) Close() error {
	return l.face.Close()
}

// Layout word-wraps s into a box of maxWidth by maxHeight pixels. A
// non-positive bound disables that constraint. Lines that do not fit
// vertically are dropped. A word wider than maxWidth keeps a line to itself.
func (l *Layouter) Layout(s string, maxWidth, maxHeight float32) (Layout, error) {
	out := Layout{LineHeight: l.lineHeight}

	words := strings.Fields(s)
	if len(words) == 0 {
		return out, nil
	}

	limit := fixed.Int26_6(-1)
	if maxWidth > 0 {
		limit = fixed.Int26_6(maxWidth * 64)
	}

	var (
		lines  []string
		widths []fixed.Int26_6
		cur    strings.Builder
		curW   fixed.Int26_6
		space  fixed.Int26_6
	)
	if len(words) > 1 {
		var err error
		if space, err = l.advance(' '); err != nil {
			return Layout{}, err
		}
	}
	for _, w := range words {
		ww, err := l.measure(w)
		if err != nil {
			return Layout{}, err
		}
		if cur.Len() > 0 && (limit < 0 || curW+space+ww <= limit) {
			cur.WriteByte(' ')
			cur.WriteString(w)
			curW += space + ww
			continue
		}
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			widths = append(widths, curW)
			cur.Reset()
		}
		cur.WriteString(w)
		curW = ww
	}
	lines = append(lines, cur.String())
	widths = append(widths, curW)

	if maxHeight > 0 {
		fit := int(maxHeight / l.lineHeight)
		if fit < len(lines) {
			lines = lines[:fit]
			widths = widths[:fit]
		}
	}

	var widest fixed.Int26_6
	for _, w := range widths {
		widest = max(widest, w)
	}
	out.Lines = lines
	out.LineCount = len(lines)
	out.LineWidth = toFloat(widest)
	return out, nil
}

// Draw rasterizes a layout into dst with its top-left corner at (x, y).
func (l *Layouter) Draw(dst draw.Image, x, y int, lay Layout, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: l.face,
	}
	for i, line := range lay.Lines {
		baseline := fixed.I(y) + l.ascent + fixed.Int26_6(float32(i)*l.lineHeight*64)
		d.Dot = fixed.Point26_6{X: fixed.I(x), Y: baseline}
		d.DrawString(line)
	}
}

func (l *Layouter) measure(word string) (fixed.Int26_6, error) {
	var (
		w    fixed.Int26_6
		prev rune = -1
	)
	for _, r := range word {
		adv, err := l.advance(r)
		if err != nil {
			return 0, err
		}
		if prev >= 0 {
			w += l.face.Kern(prev, r)
		}
		w += adv
		prev = r
	}
	return w, nil
}

func (l *Layouter) advance(r rune) (fixed.Int26_6, error) {
	if adv, ok := l.advances[r]; ok {
		return adv, nil
	}
	if len(l.advances) >= l.capacity {
		return 0, fmt.Errorf("glyph %q: %w", r, ErrAtlasFull)
	}
	adv, ok := l.face.GlyphAdvance(r)
	if !ok {
		adv, _ = l.face.GlyphAdvance('?')
	}
	l.advances[r] = adv
	return adv, nil
}

func toFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
