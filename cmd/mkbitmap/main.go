package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	xdraw "golang.org/x/image/draw"

	"github.com/rmcsoft/monodraw"
)

type options struct {
	InputDir  string `short:"i" long:"input-dir"  description:"The input directory"`
	OutputDir string `short:"o" long:"output-dir" description:"The output directory"`
	Width     int    `short:"W" long:"width"      description:"Resize to this width (0 keeps the source size)"`
	Height    int    `short:"H" long:"height"     description:"Resize to this height (0 keeps the source size)"`
	Threshold uint8  `short:"t" long:"threshold"  default:"128" description:"Luminance at which a pixel turns white"`
}

func images(opts options) chan string {
	ch := make(chan string, 512)
	go func() {
		defer close(ch)

		walkFn := func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				switch filepath.Ext(info.Name()) {
				case ".png", ".jpg", ".jpeg":
					ch <- path
				}
			}
			return err
		}

		err := filepath.Walk(opts.InputDir, walkFn)
		if err != nil {
			panic(err)
		}
	}()
	return ch
}

func parseCmd() options {
	var opts options
	var cmdParser = flags.NewParser(&opts, flags.Default)

	if _, err := cmdParser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		} else {
			os.Exit(1)
		}
	}

	return opts
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

func resize(img image.Image, width, height int) image.Image {
	if width <= 0 && height <= 0 {
		return img
	}

	bounds := img.Bounds()
	if width <= 0 {
		width = bounds.Dx() * height / bounds.Dy()
	}
	if height <= 0 {
		height = bounds.Dy() * width / bounds.Dx()
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Src, nil)
	return scaled
}

func bitmapSize(bitmap *monodraw.Bitmap) int64 {
	return int64(len(bitmap.Bits))
}

func main() {
	opts := parseCmd()
	var packedSize int64
	var unpackedSize int64
	for imageFile := range images(opts) {
		fmt.Printf("Image %s\n", imageFile)

		img, err := loadImage(imageFile)
		if err != nil {
			panic(err)
		}

		bitmap := monodraw.BitmapFromImage(resize(img, opts.Width, opts.Height), opts.Threshold)
		unpackedSize += bitmapSize(bitmap)

		packed, err := monodraw.PackBitmap(bitmap)
		if err != nil {
			panic(err)
		}
		packedSize += int64(len(packed.Data))

		outputFile := filepath.Join(opts.OutputDir, filepath.Base(imageFile)+".mbm")
		err = packed.Save(outputFile)
		if err != nil {
			panic(err)
		}
	}
	fmt.Printf("---------------------------\n")
	fmt.Printf("unpackedSize=%v\n", unpackedSize)
	fmt.Printf("packedSize=%v\n", packedSize)
	if packedSize > 0 {
		fmt.Printf("unpackedSize/packedSize=%v\n", unpackedSize/packedSize)
	}
}
