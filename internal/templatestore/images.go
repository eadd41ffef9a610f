package templatestore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/fileutil"
)

// Image is a header image extracted from a configuration.
type Image struct {
	Key      string
	Filename string
	Data     []byte
}

// ImageFilename returns the conventional filename of a header image.
func ImageFilename(key string, format assets.Format) string {
	ext := format.Extension()
	if ext == "" {
		ext = ".png"
	}
	return "cabecalho_" + key + ext
}

// NormalizeForStorage returns a copy of cfg fit for the override file:
// inline images become bare filenames and legacy /config/images/ paths lose
// their prefix. The inline images are returned for the caller to write.
func NormalizeForStorage(cfg *Config) (*Config, []Image) {
	out := cfg.Clone()
	var images []Image
	for _, key := range Keys {
		e, err := out.Entry(key)
		if err != nil {
			continue
		}
		ref := e.HeaderImage
		switch ref.Kind() {
		case assets.RefInline:
			name := ImageFilename(key, ref.Format())
			images = append(images, Image{Key: key, Filename: name, Data: ref.Data()})
			e.HeaderImage = assets.StoredFilename(name)
		case assets.RefStored:
			if rest, ok := strings.CutPrefix(ref.Name(), assets.LegacyImagePrefix); ok && rest != "" {
				e.HeaderImage = assets.StoredFilename(rest)
			}
		}
	}
	out.normalize()
	return out, images
}

// ImageSource loads header images; satisfied by *assets.ImageLoader.
type ImageSource interface {
	Load(ctx context.Context, ref assets.ImageRef, timeout time.Duration) (*assets.HeaderImage, error)
}

// CollectImages gathers every configured header image, inline or stored.
// Images that fail to load are skipped and their errors joined in the
// returned error; the images that did load are still returned.
func CollectImages(ctx context.Context, cfg *Config, src ImageSource, timeout time.Duration) ([]Image, error) {
	var images []Image
	var errs []error
	for _, key := range Keys {
		e, err := cfg.Entry(key)
		if err != nil || e.HeaderImage.IsZero() {
			continue
		}
		if e.HeaderImage.Kind() == assets.RefInline {
			images = append(images, Image{
				Key:      key,
				Filename: ImageFilename(key, e.HeaderImage.Format()),
				Data:     e.HeaderImage.Data(),
			})
			continue
		}
		img, err := src.Load(ctx, e.HeaderImage, timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		images = append(images, Image{Key: key, Filename: ImageFilename(key, img.Format), Data: img.Data})
	}
	return images, errors.Join(errs...)
}

// WriteImages writes images into dir and returns the written paths.
func WriteImages(dir string, images []Image) ([]string, error) {
	paths := make([]string, 0, len(images))
	for _, img := range images {
		if err := assets.ValidateImageName(img.Filename); err != nil {
			return paths, err
		}
		path := filepath.Join(dir, img.Filename)
		if err := fileutil.WriteFileAtomic(path, img.Data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", img.Filename, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
