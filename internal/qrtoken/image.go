package qrtoken

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultImageSize is the edge length in pixels for rendered QR images.
const DefaultImageSize = 256

// RenderPNG encodes a serialized token into a scannable PNG. The image is a
// presentation artifact for the UI; the serialized token remains the contract.
func RenderPNG(raw string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	png, err := qrcode.Encode(raw, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr image: %w", err)
	}
	return png, nil
}
