package pipeline

import (
	"bytes"
	"image"
	"image/jpeg"
)

// decodeJPEG adapts the camera's native JPEG frame bytes to the
// image.Image the BMP writer needs; a camera adapter returning raw
// sensor bytes would supply its own decode func here instead.
func decodeJPEG(data []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(data))
}
