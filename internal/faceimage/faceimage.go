// Package faceimage decodes source images and turns face regions into the RGBA8
// buffers the embedding extractor reads.
package faceimage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/faceid/internal/embedding"
	"github.com/kozaktomas/faceid/internal/facematch"
)

// ErrEmptyCrop is returned when a face box does not overlap the image.
var ErrEmptyCrop = errors.New("face box does not overlap the image")

// Decode decodes an encoded image (JPEG, PNG, GIF, BMP, TIFF or WebP).
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Load reads and decodes an image file.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	img, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ToFaceImage copies the whole image into an RGBA8 FaceImage.
func ToFaceImage(img image.Image) embedding.FaceImage {
	return Crop(img, img.Bounds())
}

// Crop copies rect (in img coordinates) into an RGBA8 FaceImage whose origin is rect.Min.
func Crop(img image.Image, rect image.Rectangle) embedding.FaceImage {
	rect = rect.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)

	return embedding.FaceImage{
		Width:  rect.Dx(),
		Height: rect.Dy(),
		Pix:    dst.Pix,
	}
}

// CropFace crops img around box with facematch.CropPadding and re-projects the
// landmarks (normalized to the full image) into the crop, so both share one coordinate space.
func CropFace(img image.Image, box facematch.Box, points embedding.LandmarkSet) (embedding.FaceImage, embedding.LandmarkSet, error) {
	bounds := img.Bounds()
	rect := box.PaddedRect(facematch.CropPadding, bounds.Dx(), bounds.Dy())
	if rect.Empty() {
		return embedding.FaceImage{}, nil, ErrEmptyCrop
	}

	projected := facematch.ProjectLandmarks(points, rect, bounds.Dx(), bounds.Dy())
	return Crop(img, rect.Add(bounds.Min)), projected, nil
}

// FromValues builds a FaceImage from an RGBA channel array as sent by browser clients.
// Values are clamped to [0, 255] and rounded half to even, like a Uint8ClampedArray.
func FromValues(values []float64, width, height int) (embedding.FaceImage, error) {
	pix := make([]uint8, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v), v <= 0:
			pix[i] = 0
		case v >= 255:
			pix[i] = 255
		default:
			pix[i] = uint8(math.RoundToEven(v))
		}
	}

	img := embedding.FaceImage{Width: width, Height: height, Pix: pix}
	if err := img.Validate(); err != nil {
		return embedding.FaceImage{}, err
	}
	return img, nil
}
