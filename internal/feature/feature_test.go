package feature

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/chronoglobe/internal/engine/picking"
)

const testRadius float32 = 10000

func testOptions() BuildOptions {
	return BuildOptions{
		SubdivisionDeg: SubdivisionForGlobe(100, 100),
		Radius:         testRadius,
		Lift:           DefaultLift,
	}
}

func square(x0, y0, x1, y1 float64) orb.Ring {
	return orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func namedFeature(name any, geom orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(geom)
	f.Properties[NameKey] = name
	return f
}

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NAME": "Foo"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[0,0],[10,0],[10,10],[0,10],[0,0]]]]}},
    {"type": "Feature", "properties": {"NAME": null},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[20,0],[30,0],[30,10],[20,10],[20,0]]]]}},
    {"type": "Feature",
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[40,0],[50,0],[50,10],[40,10],[40,0]]]]}},
    {"type": "Feature", "properties": {"ABBREVN": "Bar"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[60,0],[70,0],[70,10],[60,10],[60,0]]]]}},
    {"type": "Feature", "properties": {"NAME": "Line"},
     "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}},
    {"type": "Feature", "properties": {"NAME": "Nowhere"}, "geometry": null}
  ]
}`

func TestHashToRGBDeterministic(t *testing.T) {
	names := []string{"Roman Empire", "Byzantine Empire", "Qing Empire", "", "Ö"}
	for _, name := range names {
		r1, g1, b1 := HashToRGB(name)
		r2, g2, b2 := HashToRGB(name)
		assert.Equal(t, [3]uint8{r1, g1, b1}, [3]uint8{r2, g2, b2}, "color for %q changed between calls", name)
		assert.Equal(t, uint8(255), max(r1, g1, b1), "brightest channel for %q", name)
	}
}

func TestHashToRGBDistinguishesNames(t *testing.T) {
	r1, g1, b1 := HashToRGB("France")
	r2, g2, b2 := HashToRGB("Spain")
	assert.NotEqual(t, [3]uint8{r1, g1, b1}, [3]uint8{r2, g2, b2})
}

func TestRGBFloat(t *testing.T) {
	c := RGBFloat("Mali Empire")
	for _, v := range c {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
	assert.Equal(t, float32(1), max(c[0], c[1], c[2]))
}

func TestName(t *testing.T) {
	tests := []struct {
		name   string
		props  geojson.Properties
		want   string
		wantOK bool
	}{
		{"string", geojson.Properties{NameKey: "Foo"}, "Foo", true},
		{"number", geojson.Properties{NameKey: 1815.0}, "1815", true},
		{"null", geojson.Properties{NameKey: nil}, "", false},
		{"missing", geojson.Properties{"OTHER": "x"}, "", false},
		{"nil map", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Name(tt.props)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"invalid utf8", []byte{0xff, 0xfe, '{'}},
		{"not json", []byte("not geojson")},
		{"wrong type", []byte(`{"type": "Feature", "geometry": null}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			var derr *DataError
			assert.True(t, errors.As(err, &derr), "expected *DataError, got %T", err)
		})
	}
}

func TestBuildNameFilter(t *testing.T) {
	features, err := Parse([]byte(sampleCollection))
	require.NoError(t, err)
	require.Len(t, features, 6)

	mesh, meta, errs := Build(features, testOptions())
	require.Empty(t, errs)

	var names []string
	for i := 0; i < meta.Len(); i++ {
		n, ok := meta.Name(i)
		require.True(t, ok)
		names = append(names, n)
	}
	if diff := cmp.Diff([]string{"Foo", "Line", "Nowhere"}, names); diff != "" {
		t.Errorf("accepted features mismatch (-want +got):\n%s", diff)
	}

	// Only Foo has polygon geometry.
	require.Len(t, meta.Bounds, 1)
	assert.Equal(t, 0, meta.Bounds[0].Feature)
	assert.NotEmpty(t, mesh.Vertices)
	assert.Equal(t, 0, len(mesh.Indices)%3)

	// Every vertex carries Foo's color.
	want := RGBFloat("Foo")
	for _, v := range mesh.Vertices {
		require.Equal(t, want, v.Color)
	}
}

func TestBuildExcludesUnnamedFeature(t *testing.T) {
	unnamed := geojson.NewFeature(orb.MultiPolygon{{square(0, 0, 5, 5)}})
	mesh, meta, errs := Build([]*geojson.Feature{unnamed, nil}, testOptions())
	require.Empty(t, errs)
	assert.Empty(t, mesh.Vertices)
	assert.Empty(t, mesh.Indices)
	assert.Empty(t, meta.Bounds)
	assert.Zero(t, meta.Len())
}

func TestBuildMultiPolygonBounds(t *testing.T) {
	f := namedFeature("Archipelago", orb.MultiPolygon{
		{square(0, 0, 2, 2)},
		{square(10, 10, 12, 13)},
		{orb.Ring{{30, 30}, {31, 31}, {30, 30}}}, // degenerate, skipped silently
	})

	_, meta, errs := Build([]*geojson.Feature{f}, testOptions())
	require.Empty(t, errs)
	require.Equal(t, 1, meta.Len())
	require.Len(t, meta.Bounds, 2)

	for _, b := range meta.Bounds {
		assert.Equal(t, 0, b.Feature)
	}
	want := []r2.Rect{
		r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 2}),
		r2.RectFromPoints(r2.Point{X: 10, Y: 10}, r2.Point{X: 12, Y: 13}),
	}
	got := []r2.Rect{meta.Bounds[0].Quad.Planar, meta.Bounds[1].Quad.Planar}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planar bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSkipsBadPolygonAndContinues(t *testing.T) {
	bad := namedFeature("Broken", orb.MultiPolygon{
		{orb.Ring{{0, 0}, {gomath.NaN(), 1}, {1, 1}, {0, 0}}},
		{square(5, 5, 6, 6)},
	})
	good := namedFeature("Fine", orb.MultiPolygon{{square(20, 20, 21, 21)}})

	_, meta, errs := Build([]*geojson.Feature{bad, good}, testOptions())
	require.Len(t, errs, 1)

	var gerr *GeometryError
	require.True(t, errors.As(errs[0], &gerr))
	assert.Equal(t, "Broken", gerr.Feature)
	assert.Equal(t, 0, gerr.Polygon)
	assert.ErrorIs(t, errs[0], errNonFinite)

	// The second polygon of Broken and all of Fine survive.
	require.Len(t, meta.Bounds, 2)
	assert.Equal(t, 0, meta.Bounds[0].Feature)
	assert.Equal(t, 1, meta.Bounds[1].Feature)
}

func TestBuildVerticesLiftedAboveGlobe(t *testing.T) {
	f := namedFeature("Foo", orb.MultiPolygon{{square(-20, -10, 20, 10)}})
	opts := testOptions()
	mesh, meta, _ := Build([]*geojson.Feature{f}, opts)

	r := opts.Radius + opts.Lift
	for _, v := range mesh.Vertices {
		x, y, z := float64(v.Position[0]), float64(v.Position[1]), float64(v.Position[2])
		assert.InDelta(t, float64(r), gomath.Sqrt(x*x+y*y+z*z), 0.05)
	}

	q := meta.Bounds[0].Quad
	corners := []struct {
		name     string
		lon, lat float32
		got      [3]float32
	}{
		{"top left", -20, 10, q.TopLeft.Array()},
		{"top right", 20, 10, q.TopRight.Array()},
		{"bottom left", -20, -10, q.BottomLeft.Array()},
		{"bottom right", 20, -10, q.BottomRight.Array()},
	}
	for _, c := range corners {
		want := picking.LatLonToVertex(c.lon, c.lat, r).Array()
		for i := range want {
			assert.InDelta(t, want[i], c.got[i], 0.01, c.name)
		}
	}
}

func TestSubdivisionBound(t *testing.T) {
	tests := []struct {
		name      string
		ring      orb.Ring
		threshold float32
	}{
		{
			name:      "170 degree triangle",
			ring:      orb.Ring{{-85, 0}, {85, 0}, {0, 10}, {-85, 0}},
			threshold: 3.6,
		},
		{
			name:      "long treaty border",
			ring:      orb.Ring{{-120, 49}, {-60, 49}, {-60, 45}, {-120, 45}, {-120, 49}},
			threshold: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.SubdivisionDeg = tt.threshold

			tp, err := tessellatePolygon(orb.Polygon{tt.ring}, opts)
			require.NoError(t, err)
			require.NotNil(t, tp)
			require.NotEmpty(t, tp.triangles)

			for _, tri := range tp.triangles {
				for e := 0; e < 3; e++ {
					l := tp.points[tri[e]].Sub(tp.points[tri[(e+1)%3]]).Norm()
					require.LessOrEqual(t, l, float64(tt.threshold)+1e-9, "triangle %v", tri)
				}
			}
		})
	}
}

func TestBuildSubdividesWideTriangle(t *testing.T) {
	const threshold = 3.6
	f := namedFeature("Wide", orb.MultiPolygon{{{{-85, 0}, {85, 0}, {0, 10}, {-85, 0}}}})
	opts := testOptions()
	opts.SubdivisionDeg = threshold

	mesh, meta, errs := Build([]*geojson.Feature{f}, opts)
	require.Empty(t, errs)
	require.Len(t, meta.Bounds, 1)
	require.Greater(t, mesh.TriangleCount(), 1)

	// A planar lon/lat edge of d degrees spans at most d degrees of arc.
	r := float64(opts.Radius + opts.Lift)
	maxChord := 2*r*gomath.Sin(threshold*gomath.Pi/360) + 1e-2
	for i := 0; i < len(mesh.Indices); i += 3 {
		for e := 0; e < 3; e++ {
			a := mesh.Vertices[mesh.Indices[i+e]].Position
			b := mesh.Vertices[mesh.Indices[i+(e+1)%3]].Position
			dx, dy, dz := float64(a[0]-b[0]), float64(a[1]-b[1]), float64(a[2]-b[2])
			require.LessOrEqual(t, gomath.Sqrt(dx*dx+dy*dy+dz*dz), maxChord, "triangle %d", i/3)
		}
	}
}

func TestSubdivisionPreservesArea(t *testing.T) {
	ring := orb.Ring{{-85, 0}, {85, 0}, {0, 10}, {-85, 0}}
	opts := testOptions()

	tp, err := tessellatePolygon(orb.Polygon{ring}, opts)
	require.NoError(t, err)

	var area float64
	for _, tri := range tp.triangles {
		a, b, c := tp.points[tri[0]], tp.points[tri[1]], tp.points[tri[2]]
		area += gomath.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
	}
	assert.InDelta(t, 850.0, area, 1e-6)
}

func TestSubdivisionReusesMidpointOfSharedEdge(t *testing.T) {
	// Both earcut triangles of the square split the diagonal, so they share one
	// new vertex.
	opts := testOptions()
	opts.SubdivisionDeg = 2.5

	tp, err := tessellatePolygon(orb.Polygon{square(0, 0, 2, 2)}, opts)
	require.NoError(t, err)
	assert.Len(t, tp.triangles, 4)
	assert.Len(t, tp.points, 5)
	assert.Equal(t, r2.Point{X: 1, Y: 1}, tp.points[4])
}

func TestSubdivisionLimit(t *testing.T) {
	opts := testOptions()
	opts.SubdivisionDeg = 0.01
	opts.MaxTriangles = 100

	_, err := tessellatePolygon(orb.Polygon{square(0, 0, 50, 50)}, opts)
	assert.ErrorIs(t, err, errTooManySplit)
}

func TestCentroidInsideSquare(t *testing.T) {
	tp, err := tessellatePolygon(orb.Polygon{square(0, 0, 1, 1)}, testOptions())
	require.NoError(t, err)

	assert.True(t, tp.bounds.ContainsPoint(tp.centroid), "centroid %v outside %v", tp.centroid, tp.bounds)
	assert.InDelta(t, 0.5, tp.centroid.X, 1e-9)
	assert.InDelta(t, 0.5, tp.centroid.Y, 1e-9)
}

func TestCentroidIsAreaWeighted(t *testing.T) {
	// An L shape with many vertices along one short arm. A vertex average
	// is pulled toward the dense arm, the area-weighted centroid is not.
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 1}}
	for x := 9.0; x > 1; x -= 0.25 {
		ring = append(ring, orb.Point{x, 1})
	}
	ring = append(ring, orb.Point{1, 1}, orb.Point{1, 10}, orb.Point{0, 10}, orb.Point{0, 0})

	opts := testOptions()
	opts.SubdivisionDeg = 0
	tp, err := tessellatePolygon(orb.Polygon{ring}, opts)
	require.NoError(t, err)

	// Both arms have area 10 minus the shared corner, so the centroid is symmetric.
	assert.InDelta(t, tp.centroid.X, tp.centroid.Y, 1e-6)
}

func TestCentroidAvoidsHole(t *testing.T) {
	opts := testOptions()
	opts.SubdivisionDeg = 0

	poly := orb.Polygon{
		square(0, 0, 10, 10),
		square(1, 1, 3, 3),
	}
	tp, err := tessellatePolygon(poly, opts)
	require.NoError(t, err)

	hole := r2.RectFromPoints(r2.Point{X: 1, Y: 1}, r2.Point{X: 3, Y: 3})
	assert.True(t, tp.bounds.ContainsPoint(tp.centroid))
	assert.False(t, hole.ContainsPoint(tp.centroid), "centroid %v fell inside the hole", tp.centroid)
}

func TestSubdivisionForGlobe(t *testing.T) {
	assert.InDelta(t, 3.6, SubdivisionForGlobe(100, 100), 1e-6)
	assert.InDelta(t, 1.8, SubdivisionForGlobe(100, 200), 1e-6)
	assert.Zero(t, SubdivisionForGlobe(0, 0))
}
