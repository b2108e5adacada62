// Package renderer draws the globe, the feature overlay and the label layer
// with OpenGL.
package renderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/chronoglobe/internal/app"
	"github.com/Faultbox/chronoglobe/internal/engine/camera"
	"github.com/Faultbox/chronoglobe/internal/engine/globe"
	"github.com/Faultbox/chronoglobe/internal/engine/shader"
	"github.com/Faultbox/chronoglobe/internal/feature"
	"github.com/Faultbox/chronoglobe/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	Radius         float32
	Slices, Stacks int

	// Ocean is the globe color when no basemap is loaded.
	Ocean [3]float32
	// FeatureOpacity blends feature polygons over the basemap.
	FeatureOpacity float32
}

// DefaultOcean is a dark sea blue.
var DefaultOcean = [3]float32{0.05, 0.12, 0.25}

// Renderer handles all OpenGL rendering. It must be created and used on the
// thread that owns the GL context.
type Renderer struct {
	config Config

	globeProgram   uint32
	featureProgram uint32

	globeUniforms   cameraUniforms
	featureUniforms cameraUniforms

	globe    *gpuMesh
	features *gpuMesh

	basemap uint32
	overlay *overlay
}

type cameraUniforms struct {
	view, proj, eye int32
}

func lookupCamera(program uint32) cameraUniforms {
	return cameraUniforms{
		view: shader.GetUniform(program, "uView"),
		proj: shader.GetUniform(program, "uProj"),
		eye:  shader.GetUniform(program, "uEye"),
	}
}

// New creates a new renderer. basemap may be nil, in which case the globe is
// drawn in the ocean color. painter rasterizes label text.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, shaders *shader.Preprocessor, basemap *image.RGBA, painter Painter) (*Renderer, error) {
	if shaders == nil || painter == nil {
		return nil, errors.New("renderer: shader preprocessor and label painter are required")
	}
	if cfg.FeatureOpacity <= 0 {
		cfg.FeatureOpacity = 1
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.ClearColor(0, 0, 0, 1)

	r := &Renderer{config: cfg}

	var err error
	if r.globeProgram, err = shader.CompileFiles(shaders, "globe.vert", "globe.frag"); err != nil {
		r.Close()
		return nil, fmt.Errorf("globe shader: %w", err)
	}
	if r.featureProgram, err = shader.CompileFiles(shaders, "feature.vert", "feature.frag"); err != nil {
		r.Close()
		return nil, fmt.Errorf("feature shader: %w", err)
	}
	r.globeUniforms = lookupCamera(r.globeProgram)
	r.featureUniforms = lookupCamera(r.featureProgram)

	sphere, err := globe.BuildMesh(cfg.Slices, cfg.Stacks, cfg.Radius)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("globe mesh: %w", err)
	}
	r.globe = uploadGlobe(sphere)

	if basemap != nil {
		r.basemap = uploadTexture(basemap, gl.REPEAT)
	}

	if r.overlay, err = newOverlay(shaders, painter); err != nil {
		r.Close()
		return nil, err
	}

	r.Resize(cfg.Width, cfg.Height)

	logger.Debug("renderer created",
		zap.Int("globe_triangles", sphere.TriangleCount()),
		zap.Bool("basemap", basemap != nil),
	)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.globe.delete()
	r.features.delete()
	r.globe, r.features = nil, nil
	if r.basemap != 0 {
		gl.DeleteTextures(1, &r.basemap)
		r.basemap = 0
	}
	if r.overlay != nil {
		r.overlay.delete()
		r.overlay = nil
	}
	for _, p := range []*uint32{&r.globeProgram, &r.featureProgram} {
		if *p != 0 {
			gl.DeleteProgram(*p)
			*p = 0
		}
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetFeatures uploads a new feature mesh and swaps it in once complete.
// A nil or empty mesh clears the feature layer.
func (r *Renderer) SetFeatures(mesh *feature.Mesh) error {
	var next *gpuMesh
	if mesh != nil && len(mesh.Indices) > 0 {
		var err error
		if next, err = uploadFeatures(mesh); err != nil {
			return err
		}
	}

	prev := r.features
	r.features = next
	prev.delete()
	return nil
}

// Draw renders one frame: globe, features, then labels when they are ready.
func (r *Renderer) Draw(ctx *app.FrameContext) error {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.globeProgram)
	setCamera(r.globeUniforms, ctx.Uniform)
	gl.Uniform1i(shader.GetUniform(r.globeProgram, "uHasBasemap"), boolInt(r.basemap != 0))
	gl.Uniform3f(shader.GetUniform(r.globeProgram, "uOcean"), r.config.Ocean[0], r.config.Ocean[1], r.config.Ocean[2])
	if r.basemap != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.basemap)
		gl.Uniform1i(shader.GetUniform(r.globeProgram, "uBasemap"), 0)
	}
	r.globe.draw()

	// Features sit too close to the sphere for the depth buffer to separate
	// them; the fragment shader drops the far hemisphere instead.
	if r.features != nil {
		gl.Disable(gl.DEPTH_TEST)
		gl.Disable(gl.CULL_FACE)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.UseProgram(r.featureProgram)
		setCamera(r.featureUniforms, ctx.Uniform)
		gl.Uniform1f(shader.GetUniform(r.featureProgram, "uOpacity"), r.config.FeatureOpacity)
		r.features.draw()
		gl.Disable(gl.BLEND)
		gl.Enable(gl.CULL_FACE)
		gl.Enable(gl.DEPTH_TEST)
	}

	if ctx.LabelsReady {
		if ctx.LabelsRebuilt || !r.overlay.sized(ctx.Width, ctx.Height) {
			r.overlay.paint(ctx.Width, ctx.Height, ctx.Labels)
		}
		r.overlay.draw()
	}

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

// ReadPixels returns the back buffer as bottom-up RGBA rows. Call it after
// Draw and before the buffers are swapped.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

func setCamera(loc cameraUniforms, u camera.Uniform) {
	gl.UniformMatrix4fv(loc.view, 1, false, &u.View[0])
	gl.UniformMatrix4fv(loc.proj, 1, false, &u.Proj[0])
	gl.Uniform4fv(loc.eye, 1, &u.Eye[0])
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
