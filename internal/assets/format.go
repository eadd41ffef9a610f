package assets

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
)

// Format identifies an image encoding.
type Format string

const (
	FormatUnknown Format = ""
	FormatPNG     Format = "PNG"
	FormatJPEG    Format = "JPEG"
	FormatGIF     Format = "GIF"
	FormatSVG     Format = "SVG"
	FormatWEBP    Format = "WEBP"
	FormatBMP     Format = "BMP"
)

var formatMIME = map[Format]string{
	FormatPNG:  "image/png",
	FormatJPEG: "image/jpeg",
	FormatGIF:  "image/gif",
	FormatSVG:  "image/svg+xml",
	FormatWEBP: "image/webp",
	FormatBMP:  "image/bmp",
}

var formatExt = map[Format]string{
	FormatPNG:  ".png",
	FormatJPEG: ".jpg",
	FormatGIF:  ".gif",
	FormatSVG:  ".svg",
	FormatWEBP: ".webp",
	FormatBMP:  ".bmp",
}

// MIMEType returns the media type of f, or "" when unknown.
func (f Format) MIMEType() string {
	return formatMIME[f]
}

// Extension returns the conventional file extension of f, with the dot.
func (f Format) Extension() string {
	return formatExt[f]
}

// Drawable reports whether the PDF backend draws f without transcoding.
func (f Format) Drawable() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatGIF, FormatSVG:
		return true
	}
	return false
}

// FormatFromMIME maps a media type (parameters allowed) to a Format.
func FormatFromMIME(mime string) Format {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/jpg", "image/pjpeg":
		return FormatJPEG
	case "image/svg":
		return FormatSVG
	case "image/x-ms-bmp":
		return FormatBMP
	}
	for f, m := range formatMIME {
		if m == mime {
			return f
		}
	}
	return FormatUnknown
}

// FormatFromExtension maps a filename's extension to a Format.
func FormatFromExtension(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".gif":
		return FormatGIF
	case ".svg":
		return FormatSVG
	case ".webp":
		return FormatWEBP
	case ".bmp":
		return FormatBMP
	}
	return FormatUnknown
}

// SniffFormat detects the format from the leading bytes of data.
func SniffFormat(data []byte) Format {
	if f := FormatFromMIME(http.DetectContentType(data)); f != FormatUnknown {
		return f
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		return FormatSVG
	}
	return FormatUnknown
}
