package layout

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"dxv/docpkg"
)

// emusPerPoint converts the EMU lengths drawing extents use.
const emusPerPoint = 12700

// drawingInfo is what layout needs from a w:drawing element: the display size
// in device units and the image relationship, when one resolved.
type drawingInfo struct {
	size Size
	rel  *docpkg.Relationship
}

// parseDrawing resolves an inline or anchored drawing. The declared extent
// wins over the image's intrinsic pixel size; with neither the drawing takes
// no space.
func parseDrawing(el *etree.Element, rels *docpkg.Relationships, scale float64, log *zap.Logger) (drawingInfo, error) {
	var info drawingInfo

	if extent := findDescendant(el, "extent"); extent != nil {
		cx, err := emuAttr(extent, "cx")
		if err != nil {
			return info, err
		}
		cy, err := emuAttr(extent, "cy")
		if err != nil {
			return info, err
		}
		info.size = Size{Width: cx * scale, Height: cy * scale}
	}

	blip := findDescendant(el, "blip")
	if blip == nil {
		log.Warn("Drawing without an image reference")
		return info, nil
	}
	id, ok := drawingAttr(blip, "embed")
	if !ok {
		log.Warn("Drawing image reference without embed attribute")
		return info, nil
	}
	rel := rels.Find(id)
	if rel == nil || len(rel.Payload) == 0 {
		log.Warn("Drawing references unknown or empty relationship", zap.String("id", id))
		return info, nil
	}
	info.rel = rel

	img, err := imaging.Decode(bytes.NewReader(rel.Payload))
	if err != nil {
		log.Warn("Unable to decode drawing image", zap.String("id", id), zap.Error(err))
		return info, nil
	}
	if info.size == (Size{}) {
		bounds := img.Bounds()
		info.size = Size{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
	}
	return info, nil
}

func emuAttr(el *etree.Element, key string) (float64, error) {
	val, ok := drawingAttr(el, key)
	if !ok {
		return 0, fmt.Errorf("extent without %s attribute", key)
	}
	n, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("extent %s value %q: %w", key, val, err)
	}
	return n / emusPerPoint, nil
}

// findDescendant returns the first descendant with the local tag name, depth
// first in document order.
func findDescendant(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
		if found := findDescendant(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// drawingAttr finds an attribute by local name regardless of namespace
// prefix (r:embed and embed both match).
func drawingAttr(el *etree.Element, key string) (string, bool) {
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
