package feature

import (
	"fmt"
	gomath "math"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rclancey/earcut"
	"go.uber.org/zap"

	"github.com/Faultbox/chronoglobe/internal/engine/picking"
	"github.com/Faultbox/chronoglobe/internal/logger"
)

// Build tessellates every named MultiPolygon feature into one mesh.
//
// Polygons that fail to triangulate are skipped and returned as
// *GeometryError values. The mesh and metadata are always usable.
func Build(features []*geojson.Feature, opts BuildOptions) (*Mesh, *Metadata, []error) {
	radius := opts.Radius + opts.Lift

	mesh := &Mesh{}
	meta := &Metadata{}
	var errs []error

	for _, f := range features {
		if f == nil {
			continue
		}
		name, ok := Name(f.Properties)
		if !ok {
			continue
		}

		idx := len(meta.Entries)
		r, g, b := HashToRGB(name)
		meta.Entries = append(meta.Entries, f.Properties)
		meta.Colors = append(meta.Colors, [3]uint8{r, g, b})

		mp, ok := f.Geometry.(orb.MultiPolygon)
		if !ok {
			continue
		}

		color := Normalize([3]uint8{r, g, b})
		for pi, poly := range mp {
			tp, err := tessellatePolygon(poly, opts)
			if err != nil {
				gerr := &GeometryError{Feature: name, Polygon: pi, Err: err}
				logger.Warn("skipping polygon", zap.Error(gerr))
				errs = append(errs, gerr)
				continue
			}
			if tp == nil {
				continue
			}

			base := uint32(len(mesh.Vertices))
			for _, p := range tp.points {
				pos := picking.LatLonToVertex(float32(p.X), float32(p.Y), radius)
				mesh.Vertices = append(mesh.Vertices, Vertex{Position: pos.Array(), Color: color})
			}
			for _, t := range tp.triangles {
				mesh.Indices = append(mesh.Indices, base+uint32(t[0]), base+uint32(t[1]), base+uint32(t[2]))
			}

			meta.Bounds = append(meta.Bounds, Bound{
				Quad:    liftQuad(tp.bounds, tp.centroid, radius),
				Feature: idx,
			})
		}
	}

	return mesh, meta, errs
}

// planarPolygon is one tessellated polygon in lon/lat space.
type planarPolygon struct {
	points    []r2.Point
	triangles [][3]int
	bounds    r2.Rect
	centroid  r2.Point
}

// tessellatePolygon triangulates and subdivides one polygon. A nil result with
// a nil error means the polygon was too small to draw.
func tessellatePolygon(poly orb.Polygon, opts BuildOptions) (*planarPolygon, error) {
	if len(poly) == 0 {
		return nil, nil
	}

	outer, err := cleanRing(poly[0])
	if err != nil {
		return nil, err
	}
	if len(outer) < 3 {
		return nil, nil
	}

	points := append([]r2.Point(nil), outer...)
	var holeStarts []int
	for _, ring := range poly[1:] {
		hole, err := cleanRing(ring)
		if err != nil {
			return nil, err
		}
		if len(hole) < 3 {
			continue
		}
		holeStarts = append(holeStarts, len(points))
		points = append(points, hole...)
	}
	outerCount := len(outer)

	coords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		coords = append(coords, p.X, p.Y)
	}

	idx, err := earcut.Earcut(coords, holeStarts, 2)
	if err != nil {
		return nil, fmt.Errorf("earcut: %w", err)
	}
	if len(idx)%3 != 0 {
		panic(fmt.Sprintf("earcut returned %d indices, not a multiple of 3", len(idx)))
	}
	if len(idx) == 0 {
		return nil, errNoTriangles
	}

	tris := make([][3]int, 0, len(idx)/3)
	for i := 0; i < len(idx); i += 3 {
		tris = append(tris, [3]int{idx[i], idx[i+1], idx[i+2]})
	}

	onHole := make([]bool, len(points))
	for i := outerCount; i < len(points); i++ {
		onHole[i] = true
	}

	limit := opts.MaxTriangles
	if limit <= 0 {
		limit = DefaultMaxTriangles
	}
	sub := subdivider{
		points:  points,
		onHole:  onHole,
		maxEdge: float64(opts.SubdivisionDeg),
		limit:   limit,
		mids:    make(map[[2]int]int),
	}
	tris, err = sub.run(tris)
	if err != nil {
		return nil, err
	}

	out := &planarPolygon{
		points:    sub.points,
		triangles: tris,
		bounds:    r2.RectFromPoints(sub.points...),
	}
	out.centroid = weightedCentroid(sub.points, sub.onHole, tris, out.bounds)
	return out, nil
}

// cleanRing converts a ring to planar points, dropping the closing duplicate.
func cleanRing(ring orb.Ring) ([]r2.Point, error) {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	pts := make([]r2.Point, 0, n)
	for _, p := range ring[:n] {
		if !finite(p[0]) || !finite(p[1]) {
			return nil, errNonFinite
		}
		pts = append(pts, r2.Point{X: p[0], Y: p[1]})
	}
	return pts, nil
}

func finite(v float64) bool {
	return !gomath.IsNaN(v) && !gomath.IsInf(v, 0)
}

// subdivider splits triangles at the midpoint of their longest edge until no
// edge is longer than maxEdge. Within one polygon, a midpoint is reused when
// both triangles on an edge split it; an edge split on one side only leaves a
// T-junction, which flat per-feature colour hides.
type subdivider struct {
	points  []r2.Point
	onHole  []bool
	maxEdge float64
	limit   int
	mids    map[[2]int]int
}

func (s *subdivider) run(tris [][3]int) ([][3]int, error) {
	if s.maxEdge <= 0 {
		return tris, nil
	}

	work := append([][3]int(nil), tris...)
	out := make([][3]int, 0, len(tris))

	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]

		e, length := s.longestEdge(t)
		if length <= s.maxEdge {
			out = append(out, t)
			continue
		}
		if len(out)+len(work)+2 > s.limit {
			return nil, errTooManySplit
		}

		a, b, c := t[e], t[(e+1)%3], t[(e+2)%3]
		m := s.midpoint(a, b)
		work = append(work, [3]int{a, m, c}, [3]int{m, b, c})
	}
	return out, nil
}

// longestEdge returns the index e of the edge (t[e], t[e+1]) and its length.
func (s *subdivider) longestEdge(t [3]int) (int, float64) {
	best, bestLen := 0, -1.0
	for e := 0; e < 3; e++ {
		l := s.points[t[e]].Sub(s.points[t[(e+1)%3]]).Norm()
		if l > bestLen {
			best, bestLen = e, l
		}
	}
	return best, bestLen
}

func (s *subdivider) midpoint(a, b int) int {
	key := [2]int{min(a, b), max(a, b)}
	if m, ok := s.mids[key]; ok {
		return m
	}
	m := len(s.points)
	s.points = append(s.points, s.points[a].Add(s.points[b]).Mul(0.5))
	s.onHole = append(s.onHole, s.onHole[a] && s.onHole[b])
	s.mids[key] = m
	return m
}

// weightedCentroid averages triangle centroids weighted by area, ignoring
// triangles that touch a hole boundary. It falls back to all triangles and
// then to the bounds centre when the weights vanish.
func weightedCentroid(points []r2.Point, onHole []bool, tris [][3]int, bounds r2.Rect) r2.Point {
	accumulate := func(skipHoles bool) (r2.Point, bool) {
		var sum r2.Point
		var weight float64
		for _, t := range tris {
			if skipHoles && (onHole[t[0]] || onHole[t[1]] || onHole[t[2]]) {
				continue
			}
			a, b, c := points[t[0]], points[t[1]], points[t[2]]
			area := gomath.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
			centre := a.Add(b).Add(c).Mul(1.0 / 3.0)
			sum = sum.Add(centre.Mul(area))
			weight += area
		}
		if weight == 0 {
			return r2.Point{}, false
		}
		return sum.Mul(1 / weight), true
	}

	if c, ok := accumulate(true); ok {
		return c
	}
	if c, ok := accumulate(false); ok {
		return c
	}
	return bounds.Center()
}

// liftQuad projects a planar rectangle and centroid onto the sphere.
func liftQuad(bounds r2.Rect, centroid r2.Point, radius float32) BoundingQuad {
	lo, hi := bounds.Lo(), bounds.Hi()
	return BoundingQuad{
		Centroid:    picking.LatLonToVertex(float32(centroid.X), float32(centroid.Y), radius),
		TopLeft:     picking.LatLonToVertex(float32(lo.X), float32(hi.Y), radius),
		TopRight:    picking.LatLonToVertex(float32(hi.X), float32(hi.Y), radius),
		BottomLeft:  picking.LatLonToVertex(float32(lo.X), float32(lo.Y), radius),
		BottomRight: picking.LatLonToVertex(float32(hi.X), float32(lo.Y), radius),
		Planar:      bounds,
	}
}
