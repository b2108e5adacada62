// featuretool is a CLI utility for inspecting historical boundary datasets.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"

	"github.com/Faultbox/chronoglobe/internal/app"
	"github.com/Faultbox/chronoglobe/internal/config"
	"github.com/Faultbox/chronoglobe/internal/engine/camera"
	"github.com/Faultbox/chronoglobe/internal/engine/text"
	"github.com/Faultbox/chronoglobe/internal/feature"
	"github.com/Faultbox/chronoglobe/internal/label"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "labels":
		cmdLabels(args)
	case "colors", "color":
		cmdColors(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`featuretool - historical boundary dataset utility

Usage:
  featuretool <command> [options]

Commands:
  info <file.geojson>                 Show feature, polygon and triangle counts
  labels [options] <file.geojson>     Place labels for a camera position
  colors <name>...                    Show the color assigned to feature names
  config [path]                       Write the default config (stdout if no path)

Label options:
  -w, -h       Viewport size in pixels (default 1280x720)
  -yaw         Camera yaw in degrees
  -pitch       Camera pitch in degrees
  -distance    Camera distance in globe radii (default 1.5)
  -density     Rays across the screen width (default 15)

Examples:
  featuretool info assets/features/world_1500.geojson
  featuretool labels -yaw 30 -pitch 45 assets/features/world_1500.geojson
  featuretool colors "Holy Roman Empire" Byzantium
  featuretool config ~/.config/chronoglobe/config.yaml`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: featuretool info <file.geojson>")
		os.Exit(1)
	}
	if err := info(os.Stdout, args[0]); err != nil {
		fail(err)
	}
}

// datasetStats summarizes one built dataset.
type datasetStats struct {
	Features  int
	Named     int
	Polygons  int
	Vertices  int
	Triangles int
	// Geometry holds every skipped polygon, combined.
	Geometry error
}

func buildFile(path string, opts feature.BuildOptions) (*feature.Mesh, *feature.Metadata, datasetStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, datasetStats{}, err
	}
	features, err := feature.Parse(data)
	if err != nil {
		return nil, nil, datasetStats{}, err
	}
	mesh, meta, errs := feature.Build(features, opts)

	return mesh, meta, datasetStats{
		Features:  len(features),
		Named:     meta.Len(),
		Polygons:  len(meta.Bounds),
		Vertices:  len(mesh.Vertices),
		Triangles: mesh.TriangleCount(),
		Geometry:  multierr.Combine(errs...),
	}, nil
}

func info(w io.Writer, path string) error {
	_, _, st, err := buildFile(path, app.BuildOptions(config.Default()))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Dataset:   %s\n", path)
	fmt.Fprintf(w, "Features:  %d (%d named)\n", st.Features, st.Named)
	fmt.Fprintf(w, "Polygons:  %d\n", st.Polygons)
	fmt.Fprintf(w, "Vertices:  %d\n", st.Vertices)
	fmt.Fprintf(w, "Triangles: %d\n", st.Triangles)

	skipped := multierr.Errors(st.Geometry)
	if len(skipped) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nSkipped polygons: %d\n", len(skipped))
	for _, e := range skipped {
		fmt.Fprintf(w, "  %v\n", e)
	}
	return nil
}

// labelView is a simulated camera for headless label placement.
type labelView struct {
	Width, Height int
	Yaw, Pitch    float32 // degrees
	Distance      float32 // globe radii
	Density       int
}

func cmdLabels(args []string) {
	fs := flag.NewFlagSet("labels", flag.ExitOnError)
	var v labelView
	fs.IntVar(&v.Width, "w", 1280, "Viewport width")
	fs.IntVar(&v.Height, "h", 720, "Viewport height")
	yaw := fs.Float64("yaw", 0, "Camera yaw in degrees")
	pitch := fs.Float64("pitch", 0, "Camera pitch in degrees")
	distance := fs.Float64("distance", float64(camera.InitialDistanceMult), "Camera distance in globe radii")
	fs.IntVar(&v.Density, "density", label.DefaultRayDensity, "Rays across the screen width")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: featuretool labels [options] <file.geojson>")
		os.Exit(1)
	}
	v.Yaw, v.Pitch, v.Distance = float32(*yaw), float32(*pitch), float32(*distance)

	if err := labels(os.Stdout, fs.Arg(0), v); err != nil {
		fail(err)
	}
}

func labels(w io.Writer, path string, v labelView) error {
	cfg := config.Default()
	_, meta, _, err := buildFile(path, app.BuildOptions(cfg))
	if err != nil {
		return err
	}

	layouter, err := text.New(nil, app.TextOptions(cfg))
	if err != nil {
		return err
	}
	defer layouter.Close()

	radius := cfg.Globe.Radius
	cam := camera.New(radius)
	cam.Yaw = v.Yaw * math32.Pi / 180
	cam.Pitch = v.Pitch * math32.Pi / 180
	if v.Distance > 0 {
		cam.Distance = v.Distance * radius
	}
	cam.Update()

	engine := label.NewEngine(layouter, radius, v.Density)
	if _, err := engine.Update(false, cam.Uniform(v.Width, v.Height), v.Width, v.Height, meta); err != nil {
		return err
	}

	placed := append([]label.Label(nil), engine.Labels()...)
	sort.SliceStable(placed, func(i, j int) bool { return placed[i].Area > placed[j].Area })

	fmt.Fprintf(w, "Rays:   %d\n", len(engine.Rays()))
	fmt.Fprintf(w, "Labels: %d\n\n", len(placed))
	for _, l := range placed {
		fmt.Fprintf(w, "  %5.0f %5.0f  %10.0f px²  %s\n", l.X, l.Y, l.Area, l.Text)
	}
	return nil
}

func cmdColors(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: featuretool colors <name>...")
		os.Exit(1)
	}
	colors(os.Stdout, args)
}

func colors(w io.Writer, names []string) {
	for _, name := range names {
		r, g, b := feature.HashToRGB(name)
		fmt.Fprintf(w, "#%02x%02x%02x  %s\n", r, g, b, name)
	}
}

func cmdConfig(args []string) {
	cfg := config.Default()
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote: %s\n", args[0])
		return
	}

	data, err := cfg.Marshal()
	if err != nil {
		fail(err)
	}
	os.Stdout.Write(data)
}
