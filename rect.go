package monodraw

import "image"

// The engine uses image.Rectangle for all geometry: half-open integer
// rectangles, empty iff width or height is zero or negative. The stdlib
// operations already have the exact algebra the dirty tracker needs:
// Intersect yields the zero rectangle when two rectangles merely touch
// along an edge, and Union returns the other operand unchanged when one
// side is empty, so a bounding box can be accumulated starting from the
// zero rectangle.

// IntersectRect returns the overlap of a and b, or the zero rectangle
// when they share no area.
func IntersectRect(a, b image.Rectangle) image.Rectangle {
	return a.Intersect(b)
}

// UnionRect returns the smallest rectangle containing both a and b. The
// result is a coverage approximation: it can include area belonging to
// neither rectangle.
func UnionRect(a, b image.Rectangle) image.Rectangle {
	return a.Union(b)
}

// boundsRect is the rectangle covering a width x height raster anchored
// at the origin.
func boundsRect(width, height int) image.Rectangle {
	return image.Rect(0, 0, width, height)
}

// normalizeSpan shifts a possibly negative span backward so it starts at
// its lowest coordinate and has non-negative extent. A negative length
// draws away from the origin pixel, origin included, so the span from
// x=2 with length -5 covers x in [-2, 2].
func normalizeSpan(origin, length int) (int, int) {
	if length < 0 {
		return origin + length + 1, -length
	}
	return origin, length
}

// packedStride is the minimum number of bytes holding width 1bpp pixels.
func packedStride(width int) int {
	if width <= 0 {
		return 0
	}
	return (width + 7) / 8
}
