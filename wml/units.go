// Package wml models the WordprocessingML formatting cascade: text settings,
// named styles, numbering definitions and section geometry.
package wml

// Document lengths come in twelfths of a point, character sizes in half
// points. The device scale is the points-to-pixels multiplier (4/3 at 96
// DPI).

// TwelfthsToDevice converts a twelfth-of-a-point length to device pixels.
func TwelfthsToDevice(v float64, deviceScale float64) float64 {
	return v / 12.0 * deviceScale
}

// HalfPointsToDevice converts a half-point character size to device pixels.
func HalfPointsToDevice(v float64, deviceScale float64) float64 {
	return v / 2.0 * deviceScale
}
