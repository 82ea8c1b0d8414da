package ticket

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// EncodePNG renders the payload as a QR PNG. Rendering is deterministic for
// a given payload, so the image can always be re-derived from the stored
// token.
func EncodePNG(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// EncodeDataURL renders the payload as an inline data URL for API responses
// and dashboard previews.
func EncodeDataURL(payload string) (string, error) {
	png, err := EncodePNG(payload)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
