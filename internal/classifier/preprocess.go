package classifier

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// ImageSize is the square input edge expected by the network.
const ImageSize = 256

// Channels is the number of color channels in the network input.
const Channels = 3

// Preprocess decodes an encoded image, resizes it to ImageSize x ImageSize
// and returns its RGB pixels as an NHWC float32 tensor with raw 0..255 values.
func Preprocess(data []byte) ([]float32, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := make([]float32, 0, ImageSize*ImageSize*Channels)
	for y := 0; y < ImageSize; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+ImageSize*4]
		for x := 0; x < ImageSize*4; x += 4 {
			out = append(out, float32(row[x]), float32(row[x+1]), float32(row[x+2]))
		}
	}
	return out, nil
}
