package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader loads assets from a flat directory on the filesystem:
// template texts as {basePath}/{name}.txt and images as {basePath}/{name}.
// Implements TemplateLoader interface.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Resolve symlinks in base path so containment checks compare real paths.
	realPath, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: absPath}, nil
}

// BasePath returns the resolved absolute directory.
func (f *FilesystemLoader) BasePath() string {
	return f.basePath
}

// LoadTemplate loads a template text from {basePath}/{name}.txt.
func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	filePath := filepath.Join(f.basePath, name+".txt")
	if err := f.verifyPathContainment(filePath); err != nil {
		return "", err
	}

	content, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}

	return trimFinalNewline(string(content)), nil
}

// ReadImage reads an image file by bare name. Files larger than
// MaxImageSize are rejected with ErrImageTooLarge.
func (f *FilesystemLoader) ReadImage(name string) ([]byte, error) {
	if err := ValidateImageName(name); err != nil {
		return nil, err
	}

	filePath := filepath.Join(f.basePath, name)
	if err := f.verifyPathContainment(filePath); err != nil {
		return nil, err
	}

	return readLimited(filePath)
}

// readLimited reads at most MaxImageSize bytes from path.
func readLimited(path string) ([]byte, error) {
	file, err := os.Open(path) // #nosec G304 -- caller validates path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrImageTooLarge, path, MaxImageSize)
	}
	return data, nil
}

// verifyPathContainment ensures the resolved file path is within basePath.
// Symlinks are resolved first so a link pointing outside basePath is caught.
func (f *FilesystemLoader) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// If the file does not exist yet, keep the cleaned path; opening it
	// fails later and the prefix check still applies.
	realPath, err := filepath.EvalSymlinks(absFilePath)
	if err == nil {
		absFilePath = realPath
	}

	// Separator suffix prevents /base/path matching /base/pathevil.
	if !strings.HasPrefix(absFilePath, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}

	return nil
}

// Compile-time interface check.
var _ TemplateLoader = (*FilesystemLoader)(nil)
