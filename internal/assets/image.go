package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"math"

	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxImageSize bounds the bytes read for a single header image.
const MaxImageSize = 10 << 20

// HeaderImage is a decoded header image ready for drawing.
// Width and Height are the natural size in pixels.
type HeaderImage struct {
	Data   []byte
	Format Format
	Width  int
	Height int
}

// DecodeHeaderImage determines the format and natural size of data.
// A declared format is trusted only when the bytes agree with it; otherwise
// the sniffed format is used. WebP and BMP images are transcoded to PNG.
func DecodeHeaderImage(data []byte, declared Format) (*HeaderImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrImageDecode)
	}

	format := SniffFormat(data)
	if format == FormatUnknown {
		format = declared
	}

	switch format {
	case FormatSVG:
		sig, err := gofpdf.SVGBasicParse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: svg: %v", ErrImageDecode, err)
		}
		w, h := int(math.Round(sig.Wd)), int(math.Round(sig.Ht))
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("%w: svg has no width or height", ErrImageDecode)
		}
		return &HeaderImage{Data: data, Format: FormatSVG, Width: w, Height: h}, nil

	case FormatPNG, FormatJPEG, FormatGIF:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, format, err)
		}
		if cfg.Width <= 0 || cfg.Height <= 0 {
			return nil, fmt.Errorf("%w: %s has no pixels", ErrImageDecode, format)
		}
		return &HeaderImage{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil

	case FormatWEBP, FormatBMP:
		return transcodePNG(data, format)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(declared))
	}
}

// transcodePNG decodes a raster format the PDF backend cannot embed and
// re-encodes it as PNG.
func transcodePNG(data []byte, format Format) (*HeaderImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: transcoding %s: %v", ErrImageDecode, format, err)
	}
	b := img.Bounds()
	return &HeaderImage{Data: buf.Bytes(), Format: FormatPNG, Width: b.Dx(), Height: b.Dy()}, nil
}
