package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/chai2010/tiff"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	ts "github.com/sugarme/gotch/tensor"
	"golang.org/x/image/draw"
)

// readImage reads image from file.
func readImage(filename string) (image.Image, error) {
	ext := filepath.Ext(filename)
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext {
	case ".png", ".PNG":
		return png.Decode(f)
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return jpeg.Decode(f)
	case ".tiff", ".tif", ".TIFF", ".TIF":
		return tiff.Decode(f)
	default:
		err = fmt.Errorf("Unsupported image format: %v\n", ext)
		return nil, err
	}
}

// imageToTensor converts an image to a [1 3 size size] float tensor scaled
// to 0..1, resizing with Lanczos resampling.
func imageToTensor(img image.Image, size int) *ts.Tensor {
	resized := imaging.Resize(img, size, size, imaging.Lanczos)

	vals := make([]float32, 3*size*size)
	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := resized.NRGBAAt(x, y)
			i := y*size + x
			vals[i] = float32(c.R) / 255.0
			vals[plane+i] = float32(c.G) / 255.0
			vals[2*plane+i] = float32(c.B) / 255.0
		}
	}

	return ts.MustOfSlice(vals).MustView([]int64{1, 3, int64(size), int64(size)}, true)
}

// classColor maps a class id to a stable palette color.
func classColor(class int64) color.NRGBA {
	// low-discrepancy hops around the hue wheel
	r := uint8((class*97 + 29) % 255)
	g := uint8((class*57 + 101) % 255)
	b := uint8((class*17 + 163) % 255)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// maskToImage renders a [H W] class mask as a palette image.
func maskToImage(mask *ts.Tensor) *image.NRGBA {
	size := mask.MustSize()
	h, w := int(size[0]), int(size[1])
	classes := mask.Int64Values()

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetNRGBA(x, y, classColor(classes[y*w+x]))
		}
	}

	return out
}

// overlayMask blends the class mask over the source image at the source's
// resolution. The low-resolution mask is upscaled with nearest-neighbour so
// class boundaries stay hard.
func overlayMask(src image.Image, mask *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	up := resize.Resize(uint(w), uint(h), mask, resize.NearestNeighbor)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Copy(out, image.ZP, src, bounds, draw.Src, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bg := out.NRGBAAt(x, y)
			fg := color.NRGBAModel.Convert(up.At(x, y)).(color.NRGBA)
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8((int(bg.R) + int(fg.R)) / 2),
				G: uint8((int(bg.G) + int(fg.G)) / 2),
				B: uint8((int(bg.B) + int(fg.B)) / 2),
				A: 255,
			})
		}
	}

	return out
}
