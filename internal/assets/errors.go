package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrTemplateNotFound indicates the requested template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrImageNotFound indicates the referenced image file does not exist.
	ErrImageNotFound = errors.New("image not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrInvalidDataURI indicates an inline image payload could not be parsed.
	ErrInvalidDataURI = errors.New("invalid data URI")

	// ErrUnsupportedFormat indicates the image format is not PNG, JPEG, GIF,
	// SVG, WebP or BMP.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageDecode indicates the image bytes could not be decoded.
	ErrImageDecode = errors.New("image decode failed")

	// ErrImageFetch indicates a remote image could not be downloaded.
	ErrImageFetch = errors.New("image fetch failed")

	// ErrImageTooLarge indicates the image exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("image too large")

	// ErrImageTimeout indicates the image was not available within the timeout.
	ErrImageTimeout = errors.New("image load timed out")

	// ErrNoImage indicates Load was called with an empty reference.
	ErrNoImage = errors.New("no image configured")
)
