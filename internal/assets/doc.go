// Package assets provides header images and default template texts for
// admission documents.
//
// # Loader Architecture
//
// Template texts use a layered loading system:
//
//	TemplateLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - default templates built into the binary
//	    ├── FilesystemLoader  - templates from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// Header images are loaded by ImageLoader, which accepts an ImageRef:
//
//	ImageRef
//	    ├── NoImage         - nothing configured
//	    ├── StoredFilename  - bare name under the image directory, an
//	    │                     absolute path, or an http(s) URL
//	    └── InlinePayload   - bytes carried in the configuration (data: URI)
//
// Loading is a single blocking call bounded by an explicit timeout. Images
// in formats the PDF backend cannot draw (WebP, BMP) are transcoded to PNG,
// and the natural pixel size is decoded for layout.
//
// # Security
//
// Bare image and template names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
