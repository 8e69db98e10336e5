package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"

	"github.com/muurk/stylegen/internal/transform"
)

// PlaceholderSize is the edge length of generated images in pixels
const PlaceholderSize = 64

// Placeholder renders a PNG for req and returns it as a data URL.
// The same request always yields the same image. The prompt picks the base
// color, the step count sets the number of bands and the guidance scale sets
// their contrast.
func Placeholder(req transform.Request) (string, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.Prompt))
	sum := h.Sum32()
	base := color.RGBA{R: uint8(sum >> 16), G: uint8(sum >> 8), B: uint8(sum), A: 0xff}

	bands := 1 + req.NumInferenceSteps%8
	contrast := req.GuidanceScale / MaxGuidance

	img := image.NewRGBA(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
	for y := 0; y < PlaceholderSize; y++ {
		band := y * bands / PlaceholderSize
		shade := 1 - contrast*float64(band)/float64(bands)
		c := color.RGBA{
			R: uint8(float64(base.R) * shade),
			G: uint8(float64(base.G) * shade),
			B: uint8(float64(base.B) * shade),
			A: 0xff,
		}
		for x := 0; x < PlaceholderSize; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
