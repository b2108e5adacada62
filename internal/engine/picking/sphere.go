package picking

import (
	"github.com/chewxy/math32"
	"github.com/golang/geo/s1"

	"github.com/Faultbox/chronoglobe/pkg/math"
)

// LatLonToVertex maps a lon/lat pair in degrees onto a sphere of radius r.
// Latitude 90 is +Y. Longitude 0 lies on +X and longitude 90 on +Z.
func LatLonToVertex(lon, lat, r float32) math.Vec3 {
	lonRad := radians(lon)
	latRad := radians(lat)

	sinLat, cosLat := math32.Sincos(latRad)
	sinLon, cosLon := math32.Sincos(lonRad)

	return math.Vec3{
		X: r * cosLat * cosLon,
		Y: r * sinLat,
		Z: r * cosLat * sinLon,
	}
}

// VertexToLatLon is the inverse of LatLonToVertex, returning degrees.
func VertexToLatLon(p math.Vec3) (lon, lat float32) {
	l := p.Length()
	if l == 0 {
		return 0, 0
	}
	lat = degrees(math32.Asin(p.Y / l))
	lon = degrees(math32.Atan2(p.Z, p.X))
	return lon, lat
}

func radians(deg float32) float32 {
	return float32((s1.Angle(deg) * s1.Degree).Radians())
}

func degrees(rad float32) float32 {
	return float32(s1.Angle(rad).Degrees())
}
