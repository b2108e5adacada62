package text

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayouter(t *testing.T, opts Options) *Layouter {
	t.Helper()
	l, err := New(nil, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestNewRejectsGarbageFont(t *testing.T) {
	_, err := New([]byte("not a font"), DefaultOptions())
	require.Error(t, err)
}

func TestLayoutSingleLine(t *testing.T) {
	l := newLayouter(t, DefaultOptions())

	lay, err := l.Layout("Holy Roman Empire", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, lay.LineCount)
	assert.Equal(t, []string{"Holy Roman Empire"}, lay.Lines)
	assert.Greater(t, lay.LineWidth, float32(0))
	assert.Equal(t, float32(18), lay.LineHeight)
}

func TestLayoutEmpty(t *testing.T) {
	l := newLayouter(t, DefaultOptions())

	lay, err := l.Layout("   ", 100, 100)
	require.NoError(t, err)
	assert.Zero(t, lay.LineCount)
	assert.Zero(t, lay.LineWidth)
}

func TestLayoutWrapIncreasesLineCount(t *testing.T) {
	l := newLayouter(t, DefaultOptions())

	full, err := l.Layout("Holy Roman Empire", 0, 0)
	require.NoError(t, err)
	first, err := l.Layout("Holy Roman", 0, 0)
	require.NoError(t, err)

	// Room for "Holy Roman" but not the whole name.
	maxW := (first.LineWidth + full.LineWidth) / 2
	wrapped, err := l.Layout("Holy Roman Empire", maxW, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Holy Roman", "Empire"}, wrapped.Lines)
	assert.Equal(t, 2, wrapped.LineCount)
	assert.LessOrEqual(t, wrapped.LineWidth, maxW)
	assert.Greater(t, wrapped.LineCount, full.LineCount)
}

func TestLayoutLongWordKeepsOwnLine(t *testing.T) {
	l := newLayouter(t, DefaultOptions())

	lay, err := l.Layout("Constantinople is", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Constantinople", "is"}, lay.Lines)
	assert.Greater(t, lay.LineWidth, float32(10))
}

func TestLayoutHeightLimit(t *testing.T) {
	l := newLayouter(t, DefaultOptions())

	lay, err := l.Layout("a b c d", 1, 2*l.LineHeight()+1)
	require.NoError(t, err)
	assert.Equal(t, 2, lay.LineCount)
	assert.Equal(t, []string{"a", "b"}, lay.Lines)
	assert.Equal(t, 2*l.LineHeight(), lay.Height())

	lay, err = l.Layout("a", 100, l.LineHeight()/2)
	require.NoError(t, err)
	assert.Zero(t, lay.LineCount)
	assert.Zero(t, lay.LineWidth)
}

func TestAtlasFullAndCompact(t *testing.T) {
	opts := DefaultOptions()
	opts.CacheSize = 4
	l := newLayouter(t, opts)

	_, err := l.Layout("abcd", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Cached())

	// Cached glyphs are still free.
	_, err = l.Layout("dcba", 0, 0)
	require.NoError(t, err)

	_, err = l.Layout("e", 0, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAtlasFull))

	l.Compact()
	assert.Zero(t, l.Cached())

	lay, err := l.Layout("e", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, lay.LineCount)
}

func TestDeterministicMeasure(t *testing.T) {
	l := newLayouter(t, DefaultOptions())

	a, err := l.Layout("Byzantium", 0, 0)
	require.NoError(t, err)
	l.Compact()
	b, err := l.Layout("Byzantium", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDraw(t *testing.T) {
	l := newLayouter(t, DefaultOptions())

	lay, err := l.Layout("Rome", 0, 0)
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	l.Draw(img, 2, 2, lay, color.RGBA{R: 255, A: 255})

	var inked int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			inked++
		}
	}
	assert.Greater(t, inked, 0, "expected glyph coverage in the overlay")
}
