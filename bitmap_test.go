package monodraw

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func checkerBitmap(width, height int) *Bitmap {
	b := NewBitmap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.Set(x, y, (x+y)%2 == 0)
		}
	}
	return b
}

func TestBitmapSetAt(t *testing.T) {
	b := NewBitmap(10, 4)

	b.Set(9, 3, true)
	if !b.At(9, 3) {
		t.Error("At(9,3) = false after Set")
	}
	b.Set(9, 3, false)
	if b.At(9, 3) {
		t.Error("At(9,3) = true after clear")
	}

	// Out-of-range access is a no-op / reads clear.
	b.Set(10, 0, true)
	b.Set(-1, 0, true)
	if b.At(10, 0) || b.At(-1, 0) {
		t.Error("out-of-range At = true")
	}
	for _, v := range b.Bits {
		if v != 0 {
			t.Fatal("out-of-range Set modified bits")
		}
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name   string
		bitmap *Bitmap
	}{
		{"checker 19x7", checkerBitmap(19, 7)},
		{"solid 8x8", func() *Bitmap {
			b := NewBitmap(8, 8)
			for i := range b.Bits {
				b.Bits[i] = 0xFF
			}
			return b
		}()},
		{"empty 300x2", NewBitmap(300, 2)},
		{"single pixel", func() *Bitmap {
			b := NewBitmap(1, 1)
			b.Set(0, 0, true)
			return b
		}()},
	} {
		packed, err := PackBitmap(tc.bitmap)
		if err != nil {
			t.Errorf("%s: PackBitmap: %v", tc.name, err)
			continue
		}
		got, err := packed.Unpack()
		if err != nil {
			t.Errorf("%s: Unpack: %v", tc.name, err)
			continue
		}
		if got.Width != tc.bitmap.Width || got.Height != tc.bitmap.Height {
			t.Errorf("%s: size %dx%d, want %dx%d",
				tc.name, got.Width, got.Height, tc.bitmap.Width, tc.bitmap.Height)
		}
		if !bytes.Equal(got.Bits, tc.bitmap.Bits) {
			t.Errorf("%s: bits differ after round trip", tc.name)
		}
	}
}

func TestPackBitmapRejectsEmpty(t *testing.T) {
	if _, err := PackBitmap(nil); err == nil {
		t.Error("PackBitmap(nil) = nil error")
	}
	if _, err := PackBitmap(&Bitmap{Width: 0, Height: 4}); err == nil {
		t.Error("PackBitmap(zero width) = nil error")
	}
}

func TestUnpackRejectsCorruptData(t *testing.T) {
	packed, err := PackBitmap(checkerBitmap(16, 4))
	if err != nil {
		t.Fatal(err)
	}

	// Truncated run data.
	truncated := &PackedBitmap{
		Data:   packed.Data[:len(packed.Data)-2],
		Width:  packed.Width,
		Height: packed.Height,
	}
	if _, err := truncated.Unpack(); err == nil {
		t.Error("truncated data unpacked without error")
	}

	// Height mismatch.
	tall := &PackedBitmap{Data: packed.Data, Width: packed.Width, Height: packed.Height + 1}
	if _, err := tall.Unpack(); err == nil {
		t.Error("wrong height unpacked without error")
	}

	// Row longer than the stride allows.
	wrongRow := &PackedBitmap{
		Data:   []byte{0x03, 0xFF, 0x00},
		Width:  16,
		Height: 1,
	}
	if _, err := wrongRow.Unpack(); err == nil {
		t.Error("oversized row unpacked without error")
	}
}

func TestSaveLoadPackedBitmap(t *testing.T) {
	bitmap := checkerBitmap(33, 9)
	packed, err := PackBitmap(bitmap)
	if err != nil {
		t.Fatal(err)
	}

	fileName := filepath.Join(t.TempDir(), "checker.mbm")
	if err := packed.Save(fileName); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadPackedBitmap(fileName)
	if err != nil {
		t.Fatalf("LoadPackedBitmap: %v", err)
	}
	if loaded.Width != bitmap.Width || loaded.Height != bitmap.Height {
		t.Errorf("loaded size %dx%d, want %dx%d",
			loaded.Width, loaded.Height, bitmap.Width, bitmap.Height)
	}

	got, err := loaded.Unpack()
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !bytes.Equal(got.Bits, bitmap.Bits) {
		t.Error("bits differ after save/load round trip")
	}
}

func TestLoadPackedBitmapRejectsBadHeader(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, data []byte) string {
		fileName := filepath.Join(dir, name)
		if err := os.WriteFile(fileName, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return fileName
	}

	// Wrong format word.
	bad := write("fmt.mbm", []byte{
		0x02, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x01, 0x80, 0x00,
	})
	if _, err := LoadPackedBitmap(bad); err == nil {
		t.Error("wrong format loaded without error")
	}

	// Zero width.
	bad = write("width.mbm", []byte{
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
	})
	if _, err := LoadPackedBitmap(bad); err == nil {
		t.Error("zero width loaded without error")
	}

	// Truncated header.
	bad = write("short.mbm", []byte{0x01, 0x00})
	if _, err := LoadPackedBitmap(bad); err == nil {
		t.Error("truncated header loaded without error")
	}
}

func TestBitmapFromImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.SetGray(0, 0, color.Gray{Y: 0x00})
	img.SetGray(1, 0, color.Gray{Y: 0x7F})
	img.SetGray(2, 0, color.Gray{Y: 0x80})
	img.SetGray(3, 0, color.Gray{Y: 0xFF})

	bitmap := BitmapFromImage(img, 0x80)
	want := [][2]int{{2, 0}, {3, 0}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			shouldBeSet := false
			for _, p := range want {
				if p[0] == x && p[1] == y {
					shouldBeSet = true
				}
			}
			if bitmap.At(x, y) != shouldBeSet {
				t.Errorf("At(%d,%d) = %v, want %v", x, y, bitmap.At(x, y), shouldBeSet)
			}
		}
	}
}
