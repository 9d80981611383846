package layout

import (
	"dxv/wml"
)

// VerticalPageMargin is the distance from the viewport top to the first page
// surface, in device units before zoom.
const VerticalPageMargin = 20.0

// PageSurface is one independent drawing surface, sized from the section
// geometry in device units.
type PageSurface struct {
	Index int
	Size  Size
}

// PageSurfaces builds count surfaces from the section geometry.
func PageSurfaces(ps wml.PageSettings, scale float64, count int) []PageSurface {
	size := Size{
		Width:  wml.TwelfthsToDevice(float64(ps.Size.Width), scale),
		Height: wml.TwelfthsToDevice(float64(ps.Size.Height), scale),
	}
	surfaces := make([]PageSurface, count)
	for i := range surfaces {
		surfaces[i] = PageSurface{Index: i, Size: size}
	}
	return surfaces
}

// PageBands precomputes each page's starting Y in viewport coordinates so
// painting can look up the band for a node's page_first instead of
// re-deriving it from absolute geometry. A band starting beyond the viewport
// is still assigned; the paint pass skips it.
func PageBands(count int, pageHeight, zoom, gap, startY float64) []float64 {
	bands := make([]float64, count)
	step := gap + pageHeight*zoom
	for i := range bands {
		bands[i] = startY + VerticalPageMargin*zoom + float64(i)*step
	}
	return bands
}
