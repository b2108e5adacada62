package globe

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DefaultBasemap is the equirectangular earth image shipped with the datasets.
const DefaultBasemap = "blue_marble_2048.tif"

// DecodeBasemap decodes a PNG, JPEG, TIFF or BMP image and trims padX
// columns from the left and right edges and padY rows from the top and
// bottom. The result has its origin at (0, 0).
func DecodeBasemap(data []byte, padX, padY int) (*image.RGBA, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode basemap: %w", err)
	}
	if padX < 0 || padY < 0 {
		return nil, fmt.Errorf("negative basemap padding %d x %d", padX, padY)
	}

	b := img.Bounds()
	crop := image.Rect(b.Min.X+padX, b.Min.Y+padY, b.Max.X-padX, b.Max.Y-padY)
	if crop.Empty() {
		return nil, fmt.Errorf("basemap %dx%d (%s) is smaller than its padding %d x %d",
			b.Dx(), b.Dy(), format, padX, padY)
	}

	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(out, out.Bounds(), img, crop.Min, draw.Src)
	return out, nil
}
