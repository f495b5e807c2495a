package monodraw

import (
	"image"

	"golang.org/x/image/font/basicfont"
)

// Font is a fixed-cell bitmap font covering the contiguous code point
// range [FirstChar, LastChar]. Glyph bitmaps are packed by row, MSB
// first, one after another in code point order; each glyph occupies
// ceil(GlyphWidth/8)*GlyphHeight bytes.
type Font struct {
	GlyphWidth  int
	GlyphHeight int
	FirstChar   byte
	LastChar    byte
	// Ascent is the distance from the baseline to the glyph cell top.
	// Zero means unset; DrawTextTopLeft then assumes GlyphHeight.
	Ascent int
	// Descent is the distance from the baseline to the glyph cell
	// bottom. Zero means unset.
	Descent int
	Glyphs  []byte
}

// lineHeight is Ascent+Descent when positive, otherwise GlyphHeight.
func (f *Font) lineHeight() int {
	if h := f.Ascent + f.Descent; h > 0 {
		return h
	}
	return f.GlyphHeight
}

func (f *Font) valid() bool {
	return f != nil && f.Glyphs != nil && f.GlyphWidth > 0 && f.GlyphHeight > 0 &&
		f.LastChar >= f.FirstChar
}

// TextStyle bundles the parameters of a text drawing call.
type TextStyle struct {
	Font  *Font
	Color Color
	Op    RasterOp
	// ScaleX and ScaleY stamp every set glyph pixel as a filled block of
	// that size (nearest neighbor, no interpolation). Zero means 1.
	ScaleX int
	ScaleY int
	// LetterSpacing is added to the horizontal advance of every glyph,
	// in unscaled pixels. May be negative.
	LetterSpacing int
}

func (style *TextStyle) scales() (int, int) {
	sx, sy := style.ScaleX, style.ScaleY
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}
	return sx, sy
}

// DrawText renders text with its first glyph cell anchored at pen. Code
// points outside the font range draw nothing but still advance the
// cursor by a full glyph cell. '\n' resets x to the starting column and
// advances y by one scaled line height plus one pixel.
func (s *Surface) DrawText(pen image.Point, text string, style TextStyle) {
	font := style.Font
	if !font.valid() {
		return
	}

	sx, sy := style.scales()
	glyphStride := packedStride(font.GlyphWidth)
	glyphSize := glyphStride * font.GlyphHeight
	advance := font.GlyphWidth*sx + style.LetterSpacing

	cursorX := pen.X
	cursorY := pen.Y
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\n' {
			cursorX = pen.X
			cursorY += font.lineHeight()*sy + 1
			continue
		}

		if ch >= font.FirstChar && ch <= font.LastChar {
			glyph := font.Glyphs[int(ch-font.FirstChar)*glyphSize:]
			for gy := 0; gy < font.GlyphHeight; gy++ {
				for gx := 0; gx < font.GlyphWidth; gx++ {
					if glyph[gy*glyphStride+gx/8]&(0x80>>(gx&7)) == 0 {
						continue
					}
					s.FillRect(image.Rect(
						cursorX+gx*sx,
						cursorY+gy*sy,
						cursorX+(gx+1)*sx,
						cursorY+(gy+1)*sy,
					), style.Color, style.Op)
				}
			}
		}
		cursorX += advance
	}
}

// DrawTextTopLeft renders text with the top-left corner of the first
// line at topLeft. It derives the pen position by adding the scaled font
// ascent (GlyphHeight when the font leaves Ascent unset) and delegates
// to DrawText.
func (s *Surface) DrawTextTopLeft(topLeft image.Point, text string, style TextStyle) {
	font := style.Font
	if !font.valid() {
		return
	}

	_, sy := style.scales()
	ascent := font.Ascent
	if ascent <= 0 {
		ascent = font.GlyphHeight
	}
	s.DrawText(image.Pt(topLeft.X, topLeft.Y+ascent*sy), text, style)
}

// FromBasicfont packs the glyphs of a basicfont face into a Font table
// covering printable ASCII. Stock faces such as basicfont.Face7x13 can
// be used without shipping hand-packed glyph data.
func FromBasicfont(face *basicfont.Face) *Font {
	const firstChar, lastChar = 0x20, 0x7E

	if face == nil || face.Width <= 0 || face.Height <= 0 {
		return nil
	}
	mask, ok := face.Mask.(*image.Alpha)
	if !ok {
		return nil
	}

	stride := packedStride(face.Width)
	glyphSize := stride * face.Height
	font := &Font{
		GlyphWidth:  face.Width,
		GlyphHeight: face.Height,
		FirstChar:   firstChar,
		LastChar:    lastChar,
		Ascent:      face.Ascent,
		Descent:     face.Descent,
		Glyphs:      make([]byte, glyphSize*(lastChar-firstChar+1)),
	}

	for ch := firstChar; ch <= lastChar; ch++ {
		index, ok := basicfontGlyphIndex(face, rune(ch))
		if !ok {
			continue
		}
		glyph := font.Glyphs[(ch-firstChar)*glyphSize:]
		top := index * face.Height
		for gy := 0; gy < face.Height; gy++ {
			for gx := 0; gx < face.Width; gx++ {
				if mask.AlphaAt(gx, top+gy).A >= 0x80 {
					glyph[gy*stride+gx/8] |= 0x80 >> (gx & 7)
				}
			}
		}
	}
	return font
}

// basicfontGlyphIndex resolves a rune to its glyph row index in the
// face's mask image.
func basicfontGlyphIndex(face *basicfont.Face, r rune) (int, bool) {
	for _, rr := range face.Ranges {
		if r >= rr.Low && r < rr.High {
			return rr.Offset + int(r-rr.Low), true
		}
	}
	return 0, false
}
