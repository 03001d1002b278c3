package grids

// Affine is a 2D affine transform from pixel space to coordinate space,
// stored as the six coefficients (a, b, c, d, e, f) of
//
//	x = a*col + b*row + c
//	y = d*col + e*row + f
//
// For a north-up grid b and d are zero, a is the x resolution, e is the
// negated y resolution and (c, f) is the upper-left coordinate.
type Affine [6]float64

// NorthUpTransform builds the forward transform for a north-up raster
// anchored at (ulX, ulY) with the given per-pixel resolutions.
func NorthUpTransform(resX, resY, ulX, ulY float64) Affine {
	return Affine{resX, 0, ulX, 0, -resY, ulY}
}

// Apply maps a (col, row) pixel position to an (x, y) coordinate.
// Fractional pixel positions are allowed; (0.5, 0.5) is the center of the
// upper-left pixel.
func (a Affine) Apply(col, row float64) (x, y float64) {
	x = a[0]*col + a[1]*row + a[2]
	y = a[3]*col + a[4]*row + a[5]
	return x, y
}

// Origin returns the coordinate of pixel (0, 0).
func (a Affine) Origin() (x, y float64) {
	return a[2], a[5]
}
