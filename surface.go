package monodraw

import "image"

// Color is a 1bpp pixel value.
type Color uint8

const (
	// Black is the cleared bit.
	Black Color = 0
	// White is the set bit.
	White Color = 1
)

// RasterOp selects how a painted color combines with the bit already in
// the framebuffer. The table is asymmetric by source color: each op
// describes the effect of painting White versus Black, it is not a
// general two-operand boolean combiner.
type RasterOp uint8

const (
	// RasterCopy sets the bit for White and clears it for Black.
	RasterCopy RasterOp = iota
	// RasterXOR toggles the bit when painting White; Black is a no-op.
	RasterXOR
	// RasterAND clears the bit when painting Black; White is a no-op.
	RasterAND
	// RasterOR sets the bit when painting White; Black is a no-op.
	RasterOR
)

// Surface is a drawing view over a bit-packed 1bpp framebuffer. Rows are
// packed MSB first: the mask for pixel x within its byte is 0x80>>(x&7).
//
// A Surface never owns pixel memory. Bind points the view at a
// caller-provided buffer and the view stays valid only as long as that
// buffer does. Every drawing operation is clipped against the active
// clip rectangle first; whatever it changes is folded into a single
// conservative dirty bounding box.
type Surface struct {
	bits   []byte
	width  int
	height int
	stride int
	clip   image.Rectangle
	dirty  image.Rectangle
}

// Bind repoints the surface at external memory. A stride of 0 selects
// the minimum packed stride for width. Binding resets the clip to the
// full bounds and clears the dirty rectangle; it never allocates.
func (s *Surface) Bind(bits []byte, width, height, stride int) {
	s.bits = bits
	s.width = width
	s.height = height
	if stride == 0 {
		stride = packedStride(width)
	}
	s.stride = stride
	s.ResetClip()
	s.ClearDirtyRect()
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Stride returns the bytes per framebuffer row.
func (s *Surface) Stride() int { return s.stride }

// Bounds returns the full surface rectangle.
func (s *Surface) Bounds() image.Rectangle {
	return boundsRect(s.width, s.height)
}

// Clear fills the entire buffer with color and marks the whole bounds
// dirty. The clip rectangle is ignored.
func (s *Surface) Clear(color Color) {
	if s.bits == nil || s.width <= 0 || s.height <= 0 || s.stride <= 0 {
		return
	}

	fill := byte(0x00)
	if color == White {
		fill = 0xFF
	}
	n := s.stride * s.height
	for i := 0; i < n; i++ {
		s.bits[i] = fill
	}
	s.markDirty(s.Bounds())
}

// SetClip restricts drawing to rect. The clip is always intersected with
// the surface bounds and never exceeds them.
func (s *Surface) SetClip(rect image.Rectangle) {
	s.clip = IntersectRect(rect, s.Bounds())
}

// Clip returns the active clip rectangle.
func (s *Surface) Clip() image.Rectangle { return s.clip }

// ResetClip restores the clip to the full surface bounds.
func (s *Surface) ResetClip() {
	s.clip = s.Bounds()
}

// DrawPixel paints a single pixel.
func (s *Surface) DrawPixel(p image.Point, color Color, op RasterOp) {
	if s.bits == nil || !p.In(s.clip) {
		return
	}
	s.plotUnchecked(p.X, p.Y, color, op)
	s.markDirty(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
}

// DrawHLine paints a horizontal span of the given length starting at p.
// A negative length shifts the origin backward so the span has
// non-negative extent before clipping.
func (s *Surface) DrawHLine(p image.Point, length int, color Color, op RasterOp) {
	if s.bits == nil || length == 0 {
		return
	}

	x, span := normalizeSpan(p.X, length)
	rect := IntersectRect(image.Rect(x, p.Y, x+span, p.Y+1), s.clip)
	if rect.Empty() {
		return
	}

	for cx := rect.Min.X; cx < rect.Max.X; cx++ {
		s.plotUnchecked(cx, rect.Min.Y, color, op)
	}
	s.markDirty(rect)
}

// DrawVLine paints a vertical span of the given length starting at p.
// A negative length shifts the origin backward so the span has
// non-negative extent before clipping.
func (s *Surface) DrawVLine(p image.Point, length int, color Color, op RasterOp) {
	if s.bits == nil || length == 0 {
		return
	}

	y, span := normalizeSpan(p.Y, length)
	rect := IntersectRect(image.Rect(p.X, y, p.X+1, y+span), s.clip)
	if rect.Empty() {
		return
	}

	for cy := rect.Min.Y; cy < rect.Max.Y; cy++ {
		s.plotUnchecked(rect.Min.X, cy, color, op)
	}
	s.markDirty(rect)
}

// DrawLine paints an integer Bresenham line inclusive of both endpoints.
func (s *Surface) DrawLine(p0, p1 image.Point, color Color, op RasterOp) {
	x0, y0 := p0.X, p0.Y
	x1, y1 := p1.X, p1.Y

	dx := abs(x1 - x0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	dy := -abs(y1 - y0)
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		s.DrawPixel(image.Pt(x0, y0), color, op)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRect paints the one-pixel outline of rect. Degenerate heights
// reduce gracefully: h=1 paints a single horizontal edge, h=2 paints the
// two horizontal edges with no verticals.
func (s *Surface) DrawRect(rect image.Rectangle, color Color, op RasterOp) {
	if rect.Empty() {
		return
	}

	w := rect.Dx()
	h := rect.Dy()
	s.DrawHLine(rect.Min, w, color, op)
	if h > 1 {
		s.DrawHLine(image.Pt(rect.Min.X, rect.Max.Y-1), w, color, op)
	}
	if h > 2 {
		s.DrawVLine(image.Pt(rect.Min.X, rect.Min.Y+1), h-2, color, op)
		if w > 1 {
			s.DrawVLine(image.Pt(rect.Max.X-1, rect.Min.Y+1), h-2, color, op)
		}
	}
}

// FillRect paints every pixel of rect.
func (s *Surface) FillRect(rect image.Rectangle, color Color, op RasterOp) {
	rect = IntersectRect(rect, s.clip)
	if rect.Empty() {
		return
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		s.DrawHLine(image.Pt(rect.Min.X, y), rect.Dx(), color, op)
	}
}

// DrawCircle paints a circle outline with the integer midpoint algorithm
// using eight-way symmetry.
func (s *Surface) DrawCircle(center image.Point, radius int, color Color, op RasterOp) {
	if radius < 0 {
		return
	}

	x := radius
	y := 0
	err := 1 - x

	for x >= y {
		s.DrawPixel(image.Pt(center.X+x, center.Y+y), color, op)
		s.DrawPixel(image.Pt(center.X+y, center.Y+x), color, op)
		s.DrawPixel(image.Pt(center.X-y, center.Y+x), color, op)
		s.DrawPixel(image.Pt(center.X-x, center.Y+y), color, op)
		s.DrawPixel(image.Pt(center.X-x, center.Y-y), color, op)
		s.DrawPixel(image.Pt(center.X-y, center.Y-x), color, op)
		s.DrawPixel(image.Pt(center.X+y, center.Y-x), color, op)
		s.DrawPixel(image.Pt(center.X+x, center.Y-y), color, op)

		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

// DrawBitmap stamps the foreground pixels of bitmap with its top-left
// corner at p. Only set source bits are painted; background pixels are
// left untouched.
func (s *Surface) DrawBitmap(p image.Point, bitmap *Bitmap, foreground Color, op RasterOp) {
	if bitmap == nil || bitmap.Bits == nil || bitmap.Width <= 0 || bitmap.Height <= 0 {
		return
	}

	stride := bitmap.Stride
	if stride == 0 {
		stride = packedStride(bitmap.Width)
	}
	for y := 0; y < bitmap.Height; y++ {
		row := bitmap.Bits[y*stride:]
		for x := 0; x < bitmap.Width; x++ {
			if row[x/8]&(0x80>>(x&7)) != 0 {
				s.DrawPixel(image.Pt(p.X+x, p.Y+y), foreground, op)
			}
		}
	}
}

// DirtyRect returns the accumulated dirty bounding box. It is a
// conservative superset of the pixels touched since the last clear, not
// an exact region.
func (s *Surface) DirtyRect() image.Rectangle { return s.dirty }

// ClearDirtyRect resets the dirty rectangle to empty.
func (s *Surface) ClearDirtyRect() {
	s.dirty = image.Rectangle{}
}

// AddDirtyRect folds rect into the dirty bounding box, for pixels
// modified outside the Surface API.
func (s *Surface) AddDirtyRect(rect image.Rectangle) {
	s.markDirty(rect)
}

func (s *Surface) markDirty(rect image.Rectangle) {
	clipped := IntersectRect(rect, s.Bounds())
	if clipped.Empty() {
		return
	}
	s.dirty = UnionRect(s.dirty, clipped)
}

// plotUnchecked composites one pixel. The caller has already clipped.
func (s *Surface) plotUnchecked(x, y int, color Color, op RasterOp) {
	if s.stride <= 0 {
		return
	}

	idx := y*s.stride + x/8
	mask := byte(0x80 >> (x & 7))
	srcSet := color == White

	switch op {
	case RasterCopy:
		if srcSet {
			s.bits[idx] |= mask
		} else {
			s.bits[idx] &^= mask
		}
	case RasterXOR:
		if srcSet {
			s.bits[idx] ^= mask
		}
	case RasterAND:
		if !srcSet {
			s.bits[idx] &^= mask
		}
	case RasterOR:
		if srcSet {
			s.bits[idx] |= mask
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
