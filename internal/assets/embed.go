package assets

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// Static returns the assets bundled into the binary: shaders and a sample
// dataset.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// StaticSource returns a Source over Static.
func StaticSource() *FSSource {
	return NewFSSource("embedded", Static())
}

// SampleDataset names the bundled example dataset.
const SampleDataset = "features/sample.geojson"
