package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// DefaultImageDir is where bare image filenames are looked up.
const DefaultImageDir = "config/images"

// LegacyImagePrefix is the web path configurations exported by the browser
// tool put in front of bare image filenames. Names under it are read from
// BaseDir, not from the filesystem root.
const LegacyImagePrefix = "/config/images/"

// DefaultImageTimeout bounds a header image load when the caller gives none.
const DefaultImageTimeout = 5 * time.Second

// ImageLoader resolves an ImageRef to a decoded HeaderImage.
//
// Stored references are resolved as follows: http(s) URLs are fetched with
// Client, names under LegacyImagePrefix and bare names are read from BaseDir
// with traversal protection, and other absolute paths are read as given. Inline payloads are decoded directly.
type ImageLoader struct {
	// BaseDir holds images referenced by bare filename.
	// Empty means DefaultImageDir.
	BaseDir string

	// Client fetches remote images. Nil means http.DefaultClient.
	Client *http.Client
}

// Load resolves ref within timeout. A non-positive timeout means
// DefaultImageTimeout. The call returns as soon as the image is ready, the
// timeout expires or ctx is cancelled, whichever comes first.
func (l *ImageLoader) Load(ctx context.Context, ref ImageRef, timeout time.Duration) (*HeaderImage, error) {
	if ref.IsZero() {
		return nil, ErrNoImage
	}
	if timeout <= 0 {
		timeout = DefaultImageTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		img *HeaderImage
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := l.load(ctx, ref)
		done <- result{img: img, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w after %s: %v", ErrImageTimeout, timeout, r.err)
		}
		return r.img, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w after %s: %v", ErrImageTimeout, timeout, ctx.Err())
	}
}

func (l *ImageLoader) load(ctx context.Context, ref ImageRef) (*HeaderImage, error) {
	if ref.Kind() == RefInline {
		return DecodeHeaderImage(ref.Data(), ref.Format())
	}

	data, hint, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	if hint == FormatUnknown {
		hint = ref.Format()
	}
	return DecodeHeaderImage(data, hint)
}

// read returns the bytes of a stored reference and any format hint the
// source provided.
func (l *ImageLoader) read(ctx context.Context, ref ImageRef) ([]byte, Format, error) {
	name := ref.Name()
	if rest, ok := strings.CutPrefix(name, LegacyImagePrefix); ok && rest != "" {
		name = rest
	}
	switch {
	case ref.IsRemote():
		return l.fetch(ctx, name)
	case filepath.IsAbs(name) || strings.HasPrefix(name, "/"):
		data, err := readLimited(filepath.Clean(name))
		return data, FormatUnknown, err
	default:
		fsLoader, err := NewFilesystemLoader(l.baseDir())
		if err != nil {
			return nil, FormatUnknown, fmt.Errorf("%w: %v", ErrImageNotFound, err)
		}
		data, err := fsLoader.ReadImage(name)
		return data, FormatUnknown, err
	}
}

func (l *ImageLoader) fetch(ctx context.Context, rawURL string) ([]byte, Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}

	resp, err := l.client().Do(req)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, FormatUnknown, fmt.Errorf("%w: %s returned %s", ErrImageFetch, rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	if len(data) > MaxImageSize {
		return nil, FormatUnknown, fmt.Errorf("%w: %s exceeds %d bytes", ErrImageTooLarge, rawURL, MaxImageSize)
	}
	return data, FormatFromMIME(resp.Header.Get("Content-Type")), nil
}

func (l *ImageLoader) baseDir() string {
	if l.BaseDir == "" {
		return DefaultImageDir
	}
	return l.BaseDir
}

func (l *ImageLoader) client() *http.Client {
	if l.Client == nil {
		return http.DefaultClient
	}
	return l.Client
}
