package monodraw

import "image"

// DrawOp is a single drawing command replayed into a surface.
type DrawOp interface {
	Draw(surface *Surface) error
}

type clearOp struct {
	color Color
}

// NewClearOp returns an operation filling the whole surface with color.
func NewClearOp(color Color) DrawOp {
	return clearOp{color}
}

func (op clearOp) Draw(surface *Surface) error {
	surface.Clear(op.color)
	return nil
}

type fillRectOp struct {
	rect  image.Rectangle
	color Color
}

// NewFillRectOp returns an operation filling rect with color.
func NewFillRectOp(rect image.Rectangle, color Color) DrawOp {
	return fillRectOp{rect, color}
}

func (op fillRectOp) Draw(surface *Surface) error {
	surface.FillRect(op.rect, op.color, RasterCopy)
	return nil
}

type bitmapOp struct {
	top    image.Point
	bitmap *Bitmap
	color  Color
}

// NewBitmapOp returns an operation stamping bitmap with its top-left
// corner at top.
func NewBitmapOp(top image.Point, bitmap *Bitmap, color Color) DrawOp {
	return bitmapOp{top, bitmap, color}
}

func (op bitmapOp) Draw(surface *Surface) error {
	surface.DrawBitmap(op.top, op.bitmap, op.color, RasterCopy)
	return nil
}

type packedBitmapOp struct {
	top      image.Point
	packed   *PackedBitmap
	color    Color
	unpacked *Bitmap
}

// NewPackedBitmapOp returns an operation stamping a packed bitmap. The
// bitmap is unpacked on first draw and cached.
func NewPackedBitmapOp(top image.Point, packed *PackedBitmap, color Color) DrawOp {
	return &packedBitmapOp{top: top, packed: packed, color: color}
}

func (op *packedBitmapOp) Draw(surface *Surface) error {
	if op.unpacked == nil {
		bitmap, err := op.packed.Unpack()
		if err != nil {
			return err
		}
		op.unpacked = bitmap
	}
	surface.DrawBitmap(op.top, op.unpacked, op.color, RasterCopy)
	return nil
}

type textOp struct {
	topLeft image.Point
	text    string
	style   TextStyle
}

// NewTextOp returns an operation drawing text with its top-left corner
// at topLeft.
func NewTextOp(topLeft image.Point, text string, style TextStyle) DrawOp {
	return textOp{topLeft, text, style}
}

func (op textOp) Draw(surface *Surface) error {
	surface.DrawTextTopLeft(op.topLeft, op.text, op.style)
	return nil
}
