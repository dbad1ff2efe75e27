package export

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxLogoSize is the largest logo accepted for upload.
const MaxLogoSize = 2 << 20

var (
	ErrLogoTooLarge      = errors.New("logo exceeds 2MB")
	ErrNotImage          = errors.New("logo is not an image")
	ErrNotDataURI        = errors.New("logo is not a base64 data URI")
	ErrUnsupportedFormat = errors.New("logo format not supported in PDF")
)

// Logo is a decoded logo image.
type Logo struct {
	Data []byte
	MIME string
}

// EncodeLogo checks an uploaded file and returns it as a data URI.
func EncodeLogo(data []byte) (string, error) {
	if len(data) > MaxLogoSize {
		return "", ErrLogoTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeLogo parses a data URI. The MIME type is sniffed from the bytes, not
// taken from the URI header.
func DecodeLogo(uri string) (Logo, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Logo{}, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return Logo{}, ErrNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Logo{}, fmt.Errorf("decode logo: %w", err)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Logo{}, ErrNotImage
	}
	return Logo{Data: data, MIME: mt.String()}, nil
}

// pdfType maps the MIME type to the image types gofpdf can embed.
func (l Logo) pdfType() (string, error) {
	switch l.MIME {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, l.MIME)
}
