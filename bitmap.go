package monodraw

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
)

// Bitmap is a 1bpp raster with rows packed MSB first. Stride is bytes
// per row and may exceed the minimum needed to hold Width bits; zero
// means the minimum packed stride.
type Bitmap struct {
	Bits   []byte
	Width  int
	Height int
	Stride int
}

// NewBitmap allocates a cleared bitmap with the minimum packed stride.
func NewBitmap(width, height int) *Bitmap {
	stride := packedStride(width)
	return &Bitmap{
		Bits:   make([]byte, stride*height),
		Width:  width,
		Height: height,
		Stride: stride,
	}
}

// Set sets or clears the pixel at (x, y). Out-of-range coordinates are
// ignored.
func (b *Bitmap) Set(x, y int, on bool) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	idx := y*b.stride() + x/8
	mask := byte(0x80 >> (x & 7))
	if on {
		b.Bits[idx] |= mask
	} else {
		b.Bits[idx] &^= mask
	}
}

// At reports whether the pixel at (x, y) is set. Out-of-range
// coordinates read as clear.
func (b *Bitmap) At(x, y int) bool {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return false
	}
	return b.Bits[y*b.stride()+x/8]&(0x80>>(x&7)) != 0
}

func (b *Bitmap) stride() int {
	if b.Stride != 0 {
		return b.Stride
	}
	return packedStride(b.Width)
}

// BitmapFromImage converts any image to 1bpp by luminance threshold:
// pixels at or above the threshold become set.
func BitmapFromImage(img image.Image, threshold uint8) *Bitmap {
	bounds := img.Bounds()
	bitmap := NewBitmap(bounds.Dx(), bounds.Dy())
	for y := 0; y < bitmap.Height; y++ {
		for x := 0; x < bitmap.Width; x++ {
			gray := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			bitmap.Set(x, y, gray.Y >= threshold)
		}
	}
	return bitmap
}

// PackedBitmap is a run-length compressed Bitmap, the on-disk asset
// format (.mbm). Data encodes each packed row as {count, value} byte
// runs terminated by a zero count byte.
type PackedBitmap struct {
	Data   []byte
	Width  int
	Height int
}

// packedBitmapFormat is the first header word, identifying 1bpp MSB
// first row packing.
const packedBitmapFormat = 1

// PackBitmap compresses a bitmap into its run-length form.
func PackBitmap(bitmap *Bitmap) (*PackedBitmap, error) {
	if bitmap == nil || bitmap.Width <= 0 || bitmap.Height <= 0 {
		return nil, errors.New("empty bitmap")
	}

	packed := &PackedBitmap{
		Width:  bitmap.Width,
		Height: bitmap.Height,
	}

	stride := bitmap.stride()
	rowBytes := packedStride(bitmap.Width)
	for y := 0; y < bitmap.Height; y++ {
		row := bitmap.Bits[y*stride : y*stride+rowBytes]

		for pos := 0; pos < len(row); {
			value := row[pos]
			var count byte = 1
			pos++
			for pos < len(row) && count < 0xFF && row[pos] == value {
				count++
				pos++
			}
			packed.Data = append(packed.Data, count, value)
		}
		packed.Data = append(packed.Data, 0x00) // Row finished.
	}
	return packed, nil
}

// Unpack decompresses the packed bitmap.
func (packed *PackedBitmap) Unpack() (*Bitmap, error) {
	rowBytes := packedStride(packed.Width)
	bitmap := NewBitmap(packed.Width, packed.Height)

	out := bitmap.Bits[:0]
	rowCount := 0
	rowSize := 0
	for pos := 0; pos < len(packed.Data); {
		count := int(packed.Data[pos])
		if count == 0 {
			// Row finished.
			if rowSize != rowBytes {
				return nil, errors.New("invalid packed bitmap data")
			}
			rowCount++
			rowSize = 0
			pos++
			continue
		}
		pos++
		if pos >= len(packed.Data) {
			return nil, errors.New("invalid packed bitmap data")
		}
		value := packed.Data[pos]
		pos++
		for i := 0; i < count; i++ {
			out = append(out, value)
		}
		rowSize += count
	}

	if rowCount != packed.Height || len(out) != len(bitmap.Bits) {
		return nil, errors.New("invalid packed bitmap data")
	}
	return bitmap, nil
}

// Save writes the packed bitmap to a file: three little-endian uint32
// header words {format, width, height} followed by the run data.
func (packed *PackedBitmap) Save(fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	header := []uint32{
		packedBitmapFormat,
		uint32(packed.Width),
		uint32(packed.Height),
	}
	for _, v := range header {
		if err := binary.Write(file, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	if _, err := file.Write(packed.Data); err != nil {
		return err
	}
	return file.Sync()
}

// LoadPackedBitmap reads and validates a packed bitmap file. The run
// structure is fully walked so a corrupt file fails here rather than at
// draw time.
func LoadPackedBitmap(fileName string) (*PackedBitmap, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var header [3]uint32
	for i := range header {
		if err := binary.Read(file, binary.LittleEndian, &header[i]); err != nil {
			return nil, err
		}
	}
	if header[0] != packedBitmapFormat {
		return nil, errors.New("unsupported packed bitmap format")
	}
	width := int(header[1])
	if width <= 0 || width > 32000 {
		return nil, errors.New("invalid width")
	}
	height := int(header[2])
	if height <= 0 || height > 32000 {
		return nil, errors.New("invalid height")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	rowBytes := packedStride(width)
	rowCount := 0
	rowSize := 0
	for pos := 0; pos < len(data); {
		count := int(data[pos])
		if count == 0 {
			// Row finished.
			if rowSize != rowBytes {
				return nil, errors.New("invalid packed bitmap data")
			}
			rowCount++
			rowSize = 0
			pos++
			continue
		}
		rowSize += count
		pos += 2
	}

	if rowCount != height {
		return nil, errors.New("invalid packed bitmap data")
	}
	return &PackedBitmap{
		Data:   data,
		Width:  width,
		Height: height,
	}, nil
}
