// Package geomhelp provides the small geometry predicates the grid
// lookups need: strict point-in-ring testing, segment/extent clipping
// and an interiors-overlap test between an extent and a polygon.
package geomhelp

import (
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
)

// ExtentIntersectsPolygon reports whether the interiors of an extent and
// a polygon overlap. Sharing only an edge or a corner does not count.
// Interior rings are honored: an extent swallowed by a hole shares no
// interior with the polygon.
func ExtentIntersectsPolygon(extent geom.Extent, polygon geom.Polygon) bool {
	rings := polygon.LinearRings()
	if len(rings) == 0 || len(rings[0]) < 3 {
		return false
	}
	if !extentIntersectsRing(extent, rings[0]) {
		return false
	}
	for _, hole := range rings[1:] {
		if extentInsideRing(extent, hole) {
			return false
		}
	}
	return true
}

// extentIntersectsRing reports whether the extent interior overlaps the
// region enclosed by the ring.
func extentIntersectsRing(extent geom.Extent, ring [][2]float64) bool {
	// A ring vertex strictly inside the extent.
	for _, v := range ring {
		if v[0] > extent.MinX() && v[0] < extent.MaxX() &&
			v[1] > extent.MinY() && v[1] < extent.MaxY() {
			return true
		}
	}

	// The extent center or a corner strictly inside the ring. The
	// center catches the coincident-rectangle case where every vertex
	// of both shapes lies on the other's boundary.
	for _, probe := range extentProbes(extent) {
		if PointInRing(probe, ring) {
			return true
		}
	}

	// A ring edge passing through the extent interior.
	last := ring[len(ring)-1]
	for _, v := range ring {
		if SegmentCrossesExtent(last, v, extent) {
			return true
		}
		last = v
	}
	return false
}

// extentInsideRing reports whether the extent interior lies fully within
// the closed region enclosed by the ring: no ring vertex strictly inside
// the extent, no ring edge through the extent interior, and the extent
// center inside or on the ring. Touching the ring from within still
// counts as inside.
func extentInsideRing(extent geom.Extent, ring [][2]float64) bool {
	if len(ring) < 3 {
		return false
	}
	for _, v := range ring {
		if v[0] > extent.MinX() && v[0] < extent.MaxX() &&
			v[1] > extent.MinY() && v[1] < extent.MaxY() {
			return false
		}
	}
	last := ring[len(ring)-1]
	for _, v := range ring {
		if SegmentCrossesExtent(last, v, extent) {
			return false
		}
		last = v
	}
	center := [2]float64{(extent.MinX() + extent.MaxX()) / 2, (extent.MinY() + extent.MaxY()) / 2}
	return pointInOrOnRing(center, ring)
}

func extentProbes(extent geom.Extent) [][2]float64 {
	return [][2]float64{
		{(extent.MinX() + extent.MaxX()) / 2, (extent.MinY() + extent.MaxY()) / 2},
		{extent.MinX(), extent.MinY()},
		{extent.MaxX(), extent.MinY()},
		{extent.MaxX(), extent.MaxY()},
		{extent.MinX(), extent.MaxY()},
	}
}

// PointInRing reports whether a point lies strictly inside a ring.
// Points on the ring boundary are outside. The ring needs no explicit
// closing vertex.
func PointInRing(pt [2]float64, ring [][2]float64) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	last := ring[len(ring)-1]
	for _, v := range ring {
		intersects, on := RayIntersect(pt, last, v)
		if on {
			return false
		}
		if intersects {
			inside = !inside
		}
		last = v
	}
	return inside
}

// pointInOrOnRing is PointInRing with boundary points counted as inside.
func pointInOrOnRing(pt [2]float64, ring [][2]float64) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	last := ring[len(ring)-1]
	for _, v := range ring {
		intersects, on := RayIntersect(pt, last, v)
		if on {
			return true
		}
		if intersects {
			inside = !inside
		}
		last = v
	}
	return inside
}

// SegmentCrossesExtent reports whether the segment a-b passes through
// the interior of the extent. Segments that only touch the boundary, or
// run along it, do not cross. Liang-Barsky clipping.
func SegmentCrossesExtent(a, b [2]float64, extent geom.Extent) bool {
	dx, dy := b[0]-a[0], b[1]-a[1]
	t0, t1 := 0.0, 1.0
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{a[0] - extent.MinX(), extent.MaxX() - a[0], a[1] - extent.MinY(), extent.MaxY() - a[1]}
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	if t0 >= t1 {
		return false
	}
	// The clipped midpoint must be interior, otherwise the segment only
	// rides along the boundary.
	mid := (t0 + t1) / 2
	mx, my := a[0]+mid*dx, a[1]+mid*dy
	return mx > extent.MinX() && mx < extent.MaxX() &&
		my > extent.MinY() && my < extent.MaxY()
}

// from paulmach/orb
// Original implementation: http://rosettacode.org/wiki/Ray-casting_algorithm#Go
//
//nolint:cyclop,nestif
func RayIntersect(pt, start, end [2]float64) (intersects, on bool) {
	if start[0] > end[0] {
		start, end = end, start
	}

	if pt[0] == start[0] {
		if pt[1] == start[1] {
			// pt == start
			return false, true
		} else if start[0] == end[0] {
			// vertical segment (start -> end)
			// return true if within the line, check to see if start or end is greater.
			if start[1] > end[1] && start[1] >= pt[1] && pt[1] >= end[1] {
				return false, true
			}

			if end[1] > start[1] && end[1] >= pt[1] && pt[1] >= start[1] {
				return false, true
			}
		}

		// Move the y coordinate to deal with degenerate case
		pt[0] = math.Nextafter(pt[0], math.Inf(1))
	} else if pt[0] == end[0] {
		if pt[1] == end[1] {
			// matching the end point
			return false, true
		}

		pt[0] = math.Nextafter(pt[0], math.Inf(1))
	}

	if pt[0] < start[0] || pt[0] > end[0] {
		return false, false
	}

	if start[1] > end[1] {
		if pt[1] > start[1] {
			return false, false
		} else if pt[1] < end[1] {
			return true, false
		}
	} else {
		if pt[1] > end[1] {
			return false, false
		} else if pt[1] < start[1] {
			return true, false
		}
	}

	rs := (pt[1] - start[1]) / (pt[0] - start[0])
	ds := (end[1] - start[1]) / (end[0] - start[0])

	if rs == ds {
		return false, true
	}

	return rs <= ds, false
}

// WktMustEncode renders a geometry as WKT for log output, truncated to
// maxLen characters. A maxLen of 0 disables truncation.
func WktMustEncode(g geom.Geometry, maxLen uint) string {
	if maxLen == 0 {
		return wkt.MustEncode(g)
	}
	return truncate.StringWithTail(wkt.MustEncode(g), maxLen, "...")
}
