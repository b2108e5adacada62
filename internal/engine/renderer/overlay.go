package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/chronoglobe/internal/engine/shader"
	"github.com/Faultbox/chronoglobe/internal/engine/text"
	"github.com/Faultbox/chronoglobe/internal/label"
)

// Painter rasterizes laid-out text. *text.Layouter implements it.
type Painter interface {
	Draw(dst draw.Image, x, y int, lay text.Layout, c color.Color)
}

// overlay is a screen-sized RGBA layer holding the rasterized labels,
// composited over the globe with a full-screen quad.
type overlay struct {
	program  uint32
	vao, vbo uint32
	tex      uint32

	canvas  *image.RGBA
	painter Painter
}

// Full-screen quad: NDC position then texture coordinate. Canvas row 0 is the
// top of the screen.
var quadVertices = []float32{
	-1, 1, 0, 0,
	-1, -1, 0, 1,
	1, -1, 1, 1,
	-1, 1, 0, 0,
	1, -1, 1, 1,
	1, 1, 1, 0,
}

func newOverlay(shaders *shader.Preprocessor, painter Painter) (*overlay, error) {
	program, err := shader.CompileFiles(shaders, "overlay.vert", "overlay.frag")
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}
	o := &overlay{program: program, painter: painter}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, unsafe.Pointer(&quadVertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return o, nil
}

func (o *overlay) sized(width, height int) bool {
	return o.canvas != nil && o.canvas.Bounds().Dx() == width && o.canvas.Bounds().Dy() == height
}

// paint rasterizes labels and uploads the canvas.
func (o *overlay) paint(width, height int, labels []label.Label) {
	if width <= 0 || height <= 0 {
		return
	}
	resized := !o.sized(width, height)
	if resized {
		o.canvas = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	PaintLabels(o.canvas, o.painter, labels)

	if o.tex == 0 {
		o.tex = uploadTexture(o.canvas, gl.CLAMP_TO_EDGE)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	setPixels(o.canvas, resized)
}

func (o *overlay) draw() {
	if o.tex == 0 {
		return
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(o.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.Uniform1i(shader.GetUniform(o.program, "uOverlay"), 0)
	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(quadVertices)/4))

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (o *overlay) delete() {
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.tex != 0 {
		gl.DeleteTextures(1, &o.tex)
	}
	if o.program != 0 {
		gl.DeleteProgram(o.program)
	}
	*o = overlay{}
}

// PaintLabels clears dst and draws each label at its rectangle's top-left
// corner, clipped to the rectangle.
func PaintLabels(dst *image.RGBA, p Painter, labels []label.Label) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for _, l := range labels {
		clip := image.Rect(l.Rect.Left, l.Rect.Top, l.Rect.Right+1, l.Rect.Bottom+1).Intersect(dst.Bounds())
		if clip.Empty() {
			continue
		}
		sub, ok := dst.SubImage(clip).(*image.RGBA)
		if !ok {
			continue
		}
		p.Draw(sub, l.Rect.Left, l.Rect.Top, l.Layout, TextColor(l.Color))
	}
}

// TextColor lifts a feature color until its brightest channel is 255, so
// dark features still get readable labels.
func TextColor(c [3]uint8) color.RGBA {
	diff := 255 - max(c[0], c[1], c[2])
	return color.RGBA{R: c[0] + diff, G: c[1] + diff, B: c[2] + diff, A: 255}
}
